package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	cms "github.com/goliatone/go-cms-collections"
	collectionscmd "github.com/goliatone/go-cms-collections/internal/commands/collections"
)

func main() {
	if err := runSync(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("managed sync: %v", err)
	}
}

func runSync(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("managed-sync", flag.ContinueOnError)
	dir := fs.String("dir", "collections", "Directory holding managed collection definitions")
	pattern := fs.String("pattern", "*.md", "Glob pattern applied when discovering definition files")
	driver := fs.String("driver", "sqlite", "Database driver (sqlite or postgres)")
	dsn := fs.String("dsn", "", "Database DSN; an in-memory store is used when empty")
	migrate := fs.Bool("migrate", true, "Create missing tables before syncing")
	logLevel := fs.String("log-level", "info", "Log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := cms.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Features.Commands = true
	cfg.Features.ManagedCollections = true
	cfg.Logging.Level = *logLevel
	cfg.Managed.Directory = *dir
	cfg.Managed.Pattern = *pattern
	if *dsn != "" {
		cfg.Storage.Provider = "bun"
		cfg.Storage.Driver = *driver
		cfg.Storage.DSN = *dsn
		cfg.Storage.Migrate = *migrate
	}

	module, err := cms.New(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	handlers, err := module.RegisterCommands(nil)
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	ctx := context.Background()
	if err := handlers.SyncManaged.Execute(ctx, collectionscmd.SyncManagedCommand{}); err != nil {
		return fmt.Errorf("execute sync command: %w", err)
	}

	list, err := module.Collections().List(ctx)
	if err != nil {
		return err
	}
	for _, collection := range list {
		if collection.Managed {
			fmt.Fprintf(out, "%s\tversion=%d\n", collection.Name, collection.SchemaVersion)
		}
	}
	return nil
}
