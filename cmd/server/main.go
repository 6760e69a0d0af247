package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	school "github.com/goliatone/go-school"
	"github.com/goliatone/go-school/graph"
	"github.com/goliatone/go-school/internal/config"
	"github.com/goliatone/go-school/internal/importer"
	"github.com/goliatone/go-school/internal/server"
	"github.com/goliatone/go-school/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to $CONFIG_FILE)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "school: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := school.NewLogger(school.LogConfig{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := school.SetupDatabase(ctx, school.DatabaseOptions{
		Driver:      cfg.Database.Driver,
		DSN:         cfg.Database.DSN,
		Debug:       cfg.Database.Debug,
		PingTimeout: cfg.Database.PingTimeout,
	})
	if err != nil {
		return fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("close database: %v", err)
		}
	}()

	db := client.DB()
	if err := school.MigrateSchema(ctx, db); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	if cfg.Database.Seed {
		if err := school.SeedDatabase(ctx, client); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
		logger.Info("demo data loaded")
	}

	s := store.New(db, store.WithLogger(school.WithFields(logger, school.Fields{"component": "store"})))

	schema, err := graph.NewSchema(s, graph.SchemaConfig{
		MaxParallelism: cfg.Server.MaxParallelism,
		Logger:         school.WithFields(logger, school.Fields{"component": "graphql"}),
	})
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}

	srv := server.New(server.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Playground:   cfg.Server.PlaygroundEnabled(),
	}, server.Deps{
		Schema:   schema,
		Importer: importer.New(s.Students(), school.WithFields(logger, school.Fields{"component": "importer"})),
		Ping:     db.PingContext,
		Logger:   school.WithFields(logger, school.Fields{"component": "http"}),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(cfg.Server.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
