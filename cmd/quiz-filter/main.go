package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aryannaik/quiz-filter/internal/catalog"
	"github.com/aryannaik/quiz-filter/internal/logger"
	"github.com/aryannaik/quiz-filter/internal/markup"
	"github.com/aryannaik/quiz-filter/internal/server"
)

func main() {
	configFlag := flag.String("config", "", "YAML config file (defaults to $QUIZ_CONFIG)")
	serveFlag := flag.Bool("serve", false, "Serve the HTTP API after importing the given files")
	queryFlag := flag.String("q", "", "Filter records by substring before listing or exporting")
	outFlag := flag.String("o", "", "Write the filtered records to this file")
	listFlag := flag.Bool("list", false, "Print the filtered records instead of exporting")
	flag.Parse()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	c := catalog.New(catalog.WithLogger(log), catalog.WithCategoryDedup(cfg.CategoryDedup))

	if err := importFiles(context.Background(), c, flag.Args(), log); err != nil {
		log.Fatal("import failed", "error", err)
	}

	if *serveFlag {
		serve(cfg, c, log)
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: quiz-filter [flags] bank.xml [more.xml ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	c.ApplyFilter(*queryFlag)

	if *listFlag {
		printRecords(os.Stdout, c)
		return
	}

	out := *outFlag
	if out == "" {
		out = cfg.ExportName
	}
	n := c.SelectVisible(true)
	if err := writeExport(c, out); err != nil {
		log.Fatal("export failed", "error", err)
	}
	log.Info("export written", "path", out, "records", n)
}

// importFiles reads every path and imports them as one batch. Files that
// fail to parse are logged and skipped.
func importFiles(ctx context.Context, c *catalog.Catalog, paths []string, log *logger.Logger) error {
	if len(paths) == 0 {
		return nil
	}

	sources := make([]markup.Source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		sources = append(sources, markup.Source{Name: p, Data: data})
	}

	result, err := c.ImportSources(ctx, sources)
	if err != nil {
		return err
	}
	for _, f := range result.Failures {
		log.Error("skipping unreadable file", "path", f.Unit, "error", f.Err)
	}
	log.Info("import complete", "files", len(paths), "added", result.Added, "skipped", result.Skipped, "total", c.Count())
	return nil
}

func printRecords(w io.Writer, c *catalog.Catalog) {
	for _, r := range c.Records() {
		if !r.Visible {
			continue
		}
		marker := " "
		if r.IsCategory {
			marker = "#"
		}
		fmt.Fprintf(w, "%s %s\t%s\t%s\n", marker, r.ID, r.DisplayName, r.Token)
	}
}

func writeExport(c *catalog.Catalog, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := c.ExportTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func serve(cfg config, c *catalog.Catalog, log *logger.Logger) {
	srv := server.New(server.Config{
		Port:       cfg.Port,
		StaticDir:  cfg.StaticDir,
		ExportName: cfg.ExportName,
	}, c, log)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	if err := runServer(srv, done, log); err != nil {
		log.Fatal("server failed", "error", err)
	}
}

// runServer serves until stop fires, then shuts down gracefully. It
// returns early if the listener cannot start.
func runServer(srv *http.Server, stop <-chan os.Signal, log *logger.Logger) error {
	failed := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-stop:
	}
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
