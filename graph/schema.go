package graph

import (
	"context"
	_ "embed"
	"runtime/debug"

	"github.com/graph-gophers/graphql-go"

	school "github.com/goliatone/go-school"
	"github.com/goliatone/go-school/internal/store"
)

//go:embed schema.graphql
var SchemaSDL string

const DefaultMaxParallelism = 10

// SchemaConfig tunes the executable schema.
type SchemaConfig struct {
	MaxParallelism int
	Logger         school.Logger
}

// NewSchema parses the embedded SDL against a Resolver over s.
func NewSchema(s *store.Store, cfg SchemaConfig, opts ...Option) (*graphql.Schema, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = school.NopLogger()
	}

	parallelism := cfg.MaxParallelism
	if parallelism <= 0 {
		parallelism = DefaultMaxParallelism
	}

	resolver := NewResolver(s, append([]Option{WithLogger(logger)}, opts...)...)

	return graphql.ParseSchema(SchemaSDL, resolver,
		graphql.UseFieldResolvers(),
		graphql.MaxParallelism(parallelism),
		graphql.Logger(panicLogger{logger: logger}),
	)
}

// panicLogger reports resolver panics through the application logger.
type panicLogger struct {
	logger school.Logger
}

func (l panicLogger) LogPanic(ctx context.Context, value interface{}) {
	school.LoggerFromContext(ctx, l.logger).Error("graphql panic: %v\n%s", value, debug.Stack())
}
