// Command Postgres-to-excel-for-scada exports Postgres views into Excel
// workbooks built from pre-formatted templates. The mapping from view name
// to template, output pattern and insertion anchor lives in a flat env-style
// configuration file; this binary is only the thin shell that wires the
// pieces together and reports outcomes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/visheskaras/Postgres-to-excel-for-scada/internal/config"
	"github.com/visheskaras/Postgres-to-excel-for-scada/internal/database"
	"github.com/visheskaras/Postgres-to-excel-for-scada/internal/logger"
	"github.com/visheskaras/Postgres-to-excel-for-scada/internal/service"
)

func main() {
	var (
		envPath     = flag.String("env", config.DefaultEnvPath, "path to the configuration file")
		viewsFlag   = flag.String("views", "", "comma-separated views to export (default: all configured)")
		schema      = flag.String("schema", "", "database schema (default: DB_SCHEMA from config)")
		sheet       = flag.String("sheet", "", "target sheet name inside the template")
		withHeaders = flag.Bool("headers", false, "write column names as a leading row")
		listViews   = flag.Bool("list", false, "list the views available in the schema and exit")
		columnsOf   = flag.String("columns", "", "list the columns of one view and exit")
	)
	flag.Parse()

	if err := run(context.Background(), *envPath, *viewsFlag, *schema, *sheet, *withHeaders, *listViews, *columnsOf); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, envPath, viewsFlag, schema, sheet string, withHeaders, listViews bool, columnsOf string) error {
	cfg, err := config.Load(ctx, envPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger.InitLogging(cfg.LogFilePath)
	logger.InfoLog(ctx, "configuration loaded from %s (%d view mapping(s))", envPath, cfg.Views.Len())

	client, err := database.NewPostgresClient(ctx, database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	if schema == "" {
		schema = cfg.DBSchema
	}

	if listViews {
		names, err := client.ListViews(ctx, schema)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	if columnsOf != "" {
		columns, err := client.ListColumns(ctx, schema, columnsOf)
		if err != nil {
			return err
		}
		for _, name := range columns {
			fmt.Println(name)
		}
		return nil
	}

	selected := cfg.Views.Names()
	if viewsFlag != "" {
		selected = splitViews(viewsFlag)
	}
	if len(selected) == 0 {
		return fmt.Errorf("no views selected: configure entries in %s or pass -views", envPath)
	}

	batch := service.NewBatchExporter(cfg, client)
	opts := service.Options{
		Schema:         schema,
		SheetName:      sheet,
		IncludeHeaders: withHeaders,
		Progress: func(index, total int, viewName string) {
			fmt.Printf("[%d/%d] exporting %s...\n", index+1, total, viewName)
		},
	}

	// The batch runs off the caller's goroutine; progress arrives through
	// the callback while we wait. Exports themselves stay sequential.
	done := make(chan []service.ViewOutcome, 1)
	go func() {
		done <- batch.Run(ctx, selected, opts)
	}()
	outcomes := <-done

	for _, o := range outcomes {
		switch {
		case o.Success:
			fmt.Printf("  OK   %s: %d row(s) -> %s\n", o.ViewName, o.RecordCount, o.OutputPath)
		case o.Skipped:
			fmt.Printf("  SKIP %s: %s\n", o.ViewName, o.Message)
		default:
			fmt.Printf("  FAIL %s: %s\n", o.ViewName, o.Message)
		}
	}

	summary := service.Summarize(outcomes)
	status := "clean"
	if !summary.Clean {
		status = "partial"
	}
	fmt.Printf("%s: %d succeeded, %d failed, %d skipped of %d\n",
		status, summary.Succeeded, summary.Failed, summary.Skipped, summary.Total)

	if !summary.Clean {
		return fmt.Errorf("batch finished with %d failure(s)", summary.Failed)
	}
	return nil
}

func splitViews(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
