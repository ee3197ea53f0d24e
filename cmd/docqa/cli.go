package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/docqa"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Corpora docqa.CorpusService
	Logger  *slog.Logger

	// Root of the corpus directories, used by watch.
	DocsRoot string

	// Delays between attempts when processing fails with EEMBED.
	RetryDelays []time.Duration

	// Address served by serve unless overridden by its flag.
	Addr string
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config     string        `help:"Configuration file" default:"~/.docqa/config.yaml" env:"DOCQA_CONFIG"`
	DocsRoot   string        `help:"Directory holding one subdirectory per corpus"`
	VectorRoot string        `help:"Directory holding persisted indexes"`
	DB         string        `name:"db" help:"Corpus registry database"`
	Backend    string        `help:"Index storage backend (sqlite, bolt)"`
	Verbose    bool          `short:"v" help:"Log debug output to stderr"`
	Timeout    time.Duration `help:"Abort one-shot commands after this long (0 disables)"`

	Process ProcessCmd `cmd:"" help:"Build or refresh the index of a corpus"`
	Ask     AskCmd     `cmd:"" help:"Ask a question about a corpus"`
	Search  SearchCmd  `cmd:"" help:"Show the chunks closest to a query"`
	List    ListCmd    `cmd:"" help:"List corpus directories"`
	Status  StatusCmd  `cmd:"" help:"Show the processing state of a corpus"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a corpus record and its index"`
	Watch   WatchCmd   `cmd:"" help:"Reprocess a corpus whenever its pages change"`
	Serve   ServeCmd   `cmd:"" help:"Serve the HTTP API"`
}

// ProcessCmd is the "process" subcommand.
type ProcessCmd struct {
	Name string `arg:"" help:"Corpus name"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Name      string `arg:"" help:"Corpus name"`
	Question  string `arg:"" help:"Question to ask about the documentation"`
	Reasoning bool   `short:"r" help:"Also print the model reasoning"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Name  string `arg:"" help:"Corpus name"`
	Query string `arg:"" help:"Search query"`
	K     int    `short:"k" help:"Number of chunks (0 uses the configured top-k)"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// StatusCmd is the "status" subcommand.
type StatusCmd struct {
	Name string `arg:"" help:"Corpus name"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Name  string `arg:"" help:"Corpus name"`
	Force bool   `help:"Confirm deletion"`
}

// WatchCmd is the "watch" subcommand.
type WatchCmd struct {
	Name     string        `arg:"" help:"Corpus name"`
	Debounce time.Duration `default:"2s" help:"Quiet period before reprocessing"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `help:"Listen address (defaults to the configured address)"`
}
