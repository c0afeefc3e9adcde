package server

import (
	"net/http"

	"github.com/aryannaik/quiz-filter/internal/catalog"
	"github.com/aryannaik/quiz-filter/internal/logger"
	"github.com/aryannaik/quiz-filter/internal/search"
)

// Config carries the server settings taken from the command line config.
type Config struct {
	Port       string
	StaticDir  string
	ExportName string
}

func New(cfg Config, c *catalog.Catalog, log *logger.Logger) *http.Server {
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: NewMux(cfg, c, log),
	}

	log.Info("server listening", "url", "http://localhost:"+cfg.Port)
	return srv
}

// NewMux wires the API routes and, when StaticDir is set, a file server
// for the frontend.
func NewMux(cfg Config, c *catalog.Catalog, log *logger.Logger) *http.ServeMux {
	searcher := search.NewSearcher(c)
	handlers := NewHandlers(searcher, c, cfg.ExportName, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/import", handlers.HandleImport)
	mux.HandleFunc("/api/records", handlers.HandleRecords)
	mux.HandleFunc("/api/records/detail", handlers.HandleDetail)
	mux.HandleFunc("/api/filter", handlers.HandleFilter)
	mux.HandleFunc("/api/select", handlers.HandleSelect)
	mux.HandleFunc("/api/clear", handlers.HandleClear)
	mux.HandleFunc("/api/export", handlers.HandleExport)
	mux.HandleFunc("/api/status", handlers.HandleStatus)
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}
	return mux
}
