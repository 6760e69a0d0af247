package school

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	DefaultSQLiteDSN = "file:school?mode=memory&cache=shared&_fk=1"
)

//go:embed fixtures/*.yaml
var fixturesFS embed.FS

// DatabaseOptions selects the driver and connection for SetupDatabase.
type DatabaseOptions struct {
	Driver      string
	DSN         string
	Debug       bool
	PingTimeout time.Duration
}

func (o DatabaseOptions) withDefaults() DatabaseOptions {
	o.Driver = strings.ToLower(strings.TrimSpace(o.Driver))
	if o.Driver == "" {
		o.Driver = DriverSQLite
	}
	if strings.TrimSpace(o.DSN) == "" && o.Driver == DriverSQLite {
		o.DSN = DefaultSQLiteDSN
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = 5 * time.Second
	}
	return o
}

// MemoryDSN returns a named in-memory sqlite DSN with foreign keys enabled.
// Distinct names give isolated databases inside one process.
func MemoryDSN(name string) string {
	name = strings.NewReplacer("/", "_", " ", "_", "#", "_", "?", "_").Replace(name)
	if name == "" {
		name = "school"
	}
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name)
}

type persistenceConfig struct {
	opts DatabaseOptions
}

func (p persistenceConfig) GetDebug() bool                { return p.opts.Debug }
func (p persistenceConfig) GetDriver() string             { return p.opts.Driver }
func (p persistenceConfig) GetServer() string             { return p.opts.DSN }
func (p persistenceConfig) GetPingTimeout() time.Duration { return p.opts.PingTimeout }
func (p persistenceConfig) GetOtelIdentifier() string     { return "go-school" }

func registerModels() {
	persistence.RegisterModel(
		(*Department)(nil),
		(*Teacher)(nil),
		(*Student)(nil),
		(*Course)(nil),
	)
}

func dialectFor(driver string) (schema.Dialect, error) {
	switch driver {
	case DriverSQLite:
		return sqlitedialect.New(), nil
	case DriverPostgres:
		return pgdialect.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// SetupDatabase opens the configured database through go-persistence-bun and
// returns the client. The caller owns the client and must Close it.
func SetupDatabase(ctx context.Context, opts DatabaseOptions) (*persistence.Client, error) {
	opts = opts.withDefaults()

	dialect, err := dialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}

	registerModels()

	sqlDB, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Driver, err)
	}

	// in-memory sqlite lives as long as its last connection
	if opts.Driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}

	client, err := persistence.New(persistenceConfig{opts: opts}, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("persistence client: %w", err)
	}

	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	client.RegisterFixtures(fixturesFS)

	return client, nil
}

type tableSpec struct {
	model       any
	foreignKeys []string
}

// MigrateSchema creates the school tables and their foreign keys when missing.
func MigrateSchema(ctx context.Context, db bun.IDB) error {
	tables := []tableSpec{
		{model: (*Department)(nil)},
		{model: (*Teacher)(nil)},
		{
			model: (*Student)(nil),
			foreignKeys: []string{
				`("dept_id") REFERENCES "departments" ("id")`,
			},
		},
		{
			model: (*Course)(nil),
			foreignKeys: []string{
				`("teacher_id") REFERENCES "teachers" ("id")`,
				`("dept_id") REFERENCES "departments" ("id")`,
			},
		},
	}

	for _, table := range tables {
		query := db.NewCreateTable().IfNotExists().Model(table.model)
		for _, fk := range table.foreignKeys {
			query = query.ForeignKey(fk)
		}
		if _, err := query.Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", table.model, err)
		}
	}

	return nil
}

// SeedDatabase loads the demo fixtures into an empty database. It is a no-op
// once any department exists.
func SeedDatabase(ctx context.Context, client *persistence.Client) error {
	count, err := client.DB().NewSelect().Model((*Department)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("check seed state: %w", err)
	}
	if count > 0 {
		return nil
	}
	return client.Seed(ctx)
}
