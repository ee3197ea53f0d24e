package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/bolt"
	"github.com/fwojciec/docqa/config"
	"github.com/fwojciec/docqa/engine"
	"github.com/fwojciec/docqa/fs"
	"github.com/fwojciec/docqa/gemini"
	"github.com/fwojciec/docqa/hash"
	"github.com/fwojciec/docqa/htmltomarkdown"
	dslog "github.com/fwojciec/docqa/slog"
	"github.com/fwojciec/docqa/sqlite"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		// Commands report application errors themselves.
		var e *docqa.Error
		if !errors.As(err, &e) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Path of the .env file loaded before configuration. Set before calling Run().
	EnvFile string

	// Getenv reads environment overrides. Defaults to os.Getenv.
	Getenv func(string) string

	// SQLite database holding the corpus registry.
	DB *sqlite.DB

	// Corpus service, exposed for end-to-end testing.
	Corpora docqa.CorpusService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		EnvFile: ".env",
		Getenv:  os.Getenv,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:         ctx,
		Stdout:      stdout,
		Stderr:      stderr,
		RetryDelays: DefaultRetryDelays(),
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docqa"),
		kong.Description("Answer questions about local documentation corpora."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docqa --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	command := kongCtx.Selected().Name

	cfg, err := m.loadConfig(cli)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	} else if command == "watch" || command == "serve" {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	if cli.Timeout > 0 && command != "watch" && command != "serve" {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cli.Timeout)
		defer cancel()
		deps.Ctx = ctx
	}

	dbPath := config.ExpandHome(cfg.Database)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DOCQA_DB or --db to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()

	eng := &engine.Engine{
		Corpora:     sqlite.NewCorpusStore(m.DB),
		Indexes:     newIndexStore(cfg),
		Loader:      fs.NewLoader(htmltomarkdown.NewConverter()),
		Logger:      logger,
		DocsRoot:    config.ExpandHome(cfg.DocsRoot),
		Chunking:    cfg.ChunkOptions(),
		TopK:        cfg.TopK,
		Concurrency: cfg.Embedding.Concurrency,
	}
	if cfg.Embedding.RateLimit > 0 {
		eng.Limiter = rate.NewLimiter(rate.Limit(cfg.Embedding.RateLimit), 1)
	}

	if needsModels(command) {
		if err := m.wireModels(ctx, eng, cfg, command, logger, stderr); err != nil {
			return err
		}
	}

	m.Corpora = dslog.NewLoggingCorpusService(eng, logger)
	deps.Corpora = m.Corpora
	deps.DocsRoot = eng.DocsRoot
	deps.Addr = cfg.Server.Addr

	return kongCtx.Run(deps)
}

// loadConfig layers the configuration file, .env file, environment and flags.
func (m *Main) loadConfig(cli *CLI) (*config.Config, error) {
	if m.EnvFile != "" {
		if err := config.LoadEnvFile(m.EnvFile); err != nil {
			return nil, docqa.WrapError(err, docqa.EINVALID, "invalid env file %q: %s", m.EnvFile, err)
		}
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}

	getenv := m.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}

	if cli.DocsRoot != "" {
		cfg.DocsRoot = cli.DocsRoot
	}
	if cli.VectorRoot != "" {
		cfg.VectorRoot = cli.VectorRoot
	}
	if cli.DB != "" {
		cfg.Database = cli.DB
	}
	if cli.Backend != "" {
		cfg.IndexBackend = cli.Backend
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newIndexStore(cfg *config.Config) docqa.IndexStore {
	root := config.ExpandHome(cfg.VectorRoot)
	if cfg.IndexBackend == config.BackendBolt {
		return bolt.NewIndexStore(root)
	}
	return sqlite.NewIndexStore(root)
}

// needsModels reports whether command embeds text or generates answers.
func needsModels(command string) bool {
	switch command {
	case "process", "ask", "search", "watch", "serve":
		return true
	}
	return false
}

// wireModels sets the embedder and, for commands that answer questions, the
// synthesizer of eng.
func (m *Main) wireModels(ctx context.Context, eng *engine.Engine, cfg *config.Config, command string, logger *slog.Logger, stderr io.Writer) error {
	needsLLM := command == "ask" || command == "serve"
	needsGemini := needsLLM || cfg.Embedding.Provider == config.ProviderGemini

	var client *genai.Client
	if needsGemini {
		if cfg.LLM.APIKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return docqa.Errorf(docqa.EINVALID, "GEMINI_API_KEY not set")
		}
		var err error
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.LLM.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
	}

	var embedder docqa.Embedder
	switch cfg.Embedding.Provider {
	case config.ProviderHash:
		embedder = hash.NewEmbedder(cfg.Embedding.Dimensions)
	default:
		embedder = gemini.NewEmbedder(client, cfg.Embedding.Model, cfg.Embedding.Dimensions)
	}
	eng.Embedder = dslog.NewLoggingEmbedder(embedder, logger)

	if !needsLLM {
		return nil
	}

	synth := &engine.Synthesizer{
		Generator:   dslog.NewLoggingGenerator(gemini.NewGenerator(client, cfg.LLM.Model), logger),
		TokenBudget: cfg.LLM.TokenBudget,
		Logger:      logger,
	}
	if cfg.LLM.TokenBudget > 0 {
		counter, err := gemini.NewTokenCounter(cfg.LLM.Model)
		if err != nil {
			return fmt.Errorf("failed to create token counter: %w", err)
		}
		synth.TokenCounter = counter
	}
	eng.Synthesizer = synth
	return nil
}
