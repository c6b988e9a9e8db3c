/*
Package main runs the catalog search engine over a JSON course corpus and
serves fuzzy search, autocomplete and stats over newline-delimited JSON on
stdin/stdout.

# Usage

Serve a corpus with defaults:

	coursefind -data courses.json

Enable debug logging and a custom config:

	coursefind -data courses.json -config search.toml -d

Warm-start from a previously exported dictionary instead of rebuilding:

	coursefind -data courses.json -dict catalog.dict

# Protocol

One JSON request per line on stdin, one JSON response per line on stdout:

	{"command": "search", "query": "javascrpt", "limit": 5}
	{"command": "suggest", "prefix": "jav", "limit": 5}
	{"command": "stats"}
	{"command": "health"}
*/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/4lexxe/DevsProject-sub001/internal/logger"
	"github.com/4lexxe/DevsProject-sub001/pkg/config"
	"github.com/4lexxe/DevsProject-sub001/pkg/engine"
	"github.com/4lexxe/DevsProject-sub001/pkg/server"
)

const version = "0.3.0"

// courseRecord is the on-disk corpus format.
type courseRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Active      bool     `json:"active"`
}

func main() {
	dataPath := flag.String("data", "", "Path to the JSON corpus file")
	configPath := flag.String("config", "", "Path to a TOML config file")
	dictPath := flag.String("dict", "", "Warm-start from an exported dictionary")
	exportPath := flag.String("export", "", "Export the dictionary after building and exit")
	debugMode := flag.Bool("d", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("coursefind %s\n", version)
		return
	}

	logger.SetVerbose(*debugMode)
	cfg := config.LoadWithPriority(*configPath)

	store := engine.NewMemoryStore()
	if *dataPath != "" {
		if err := loadCorpus(*dataPath, store); err != nil {
			log.Fatalf("Loading corpus from %s: %v", *dataPath, err)
		}
		log.Debugf("Loaded %d records from %s", store.Len(), *dataPath)
	} else {
		log.Warn("No corpus file given, serving an empty catalog")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	eng := engine.New(cfg, store.Source(), store)

	if *dictPath != "" {
		f, err := os.Open(*dictPath)
		if err != nil {
			log.Fatalf("Opening dictionary %s: %v", *dictPath, err)
		}
		if err := eng.ImportDictionary(ctx, f); err != nil {
			f.Close()
			log.Fatalf("Importing dictionary: %v", err)
		}
		f.Close()
	} else if err := eng.Rebuild(ctx); err != nil {
		log.Fatalf("Building index: %v", err)
	}

	if *exportPath != "" {
		f, err := os.Create(*exportPath)
		if err != nil {
			log.Fatalf("Creating %s: %v", *exportPath, err)
		}
		if err := eng.ExportDictionary(f); err != nil {
			f.Close()
			log.Fatalf("Exporting dictionary: %v", err)
		}
		f.Close()
		log.Infof("Dictionary exported to %s", *exportPath)
		return
	}

	stats := eng.Stats()
	log.Infof("coursefind %s ready: %d terms, %d ngrams", version, stats.TotalTerms, stats.DistinctNGrams)

	srv := server.New(eng, cfg.Server, os.Stdin, os.Stdout)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Server error: %v", err)
	}
}

// loadCorpus reads the JSON corpus file into the store.
func loadCorpus(path string, store *engine.MemoryStore) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var records []courseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parsing corpus: %w", err)
	}
	for _, rec := range records {
		store.Put(engine.Record{
			ID:          rec.ID,
			Title:       rec.Title,
			Summary:     rec.Summary,
			Description: rec.Description,
			Tags:        rec.Tags,
			Category:    rec.Category,
			Price:       rec.Price,
			Active:      rec.Active,
		})
	}
	return nil
}
