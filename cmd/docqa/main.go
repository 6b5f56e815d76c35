// Package main is the docqa CLI entry point.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/docqa/internal/answer"
	"github.com/hyperjump/docqa/internal/cli"
	"github.com/hyperjump/docqa/internal/config"
	"github.com/hyperjump/docqa/internal/embedding"
	"github.com/hyperjump/docqa/internal/indexer"
	"github.com/hyperjump/docqa/internal/server"
	"github.com/hyperjump/docqa/internal/session"
	"github.com/hyperjump/docqa/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/docqa/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory wins if it exists, so "docqa server" run from a project dir uses
// the project's config. A missing default file yields the built-in defaults.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		cfg, err := config.LoadOrDefault(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "version", "--version", "-v":
		fmt.Printf("docqa version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads .env and config, then builds the logger.
func setup(configPath string, debugFlag bool) (*config.Config, *zap.Logger, string) {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, resolvedConfigPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger, resolvedConfigPath
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, resolvedConfigPath := setup(*configPath, *debug)
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug || *debug),
		zap.String("index_type", cfg.Retrieval.IndexType),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Sessions, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// argsReorder moves any flags (and their values) that appear after positional
// arguments to the front so that flag.Parse() sees them. Go's flag package stops
// at the first non-flag argument, so "docqa ask what is this -pdf doc.pdf" would
// otherwise leave -pdf unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// buildQuestion joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: docqa ask -pdf <file> [flags] [question]\n\n")
	fmt.Fprintf(fs.Output(), "With a question, answers it and exits. Without one, reads questions from stdin\n")
	fmt.Fprintf(fs.Output(), "one per line; earlier turns are kept as chat history.\n\n")
	fs.PrintDefaults()
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	pdfPath := fs.String("pdf", "", "PDF document to ask about")
	k := fs.Int("k", 0, "number of context chunks to retrieve (0 = config top_k)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	maxContext := fs.Int("max-context", 300, "truncate each context chunk to this many characters in text output (0 = no limit)")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if *pdfPath == "" {
		printAskUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	content, err := os.ReadFile(*pdfPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", *pdfPath, err)
		os.Exit(1)
	}

	cfg, logger, _ := setup(*configPath, *debug)
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := components.Sessions.Create()
	res, err := sess.Ingest(ctx, content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Processing failed: %v\n", err)
		os.Exit(1)
	}
	if format == cli.OutputText {
		cli.WriteIngestResult(os.Stderr, res)
	}

	if q := buildQuestion(fs.Args()); q != "" {
		if err := askOnce(ctx, sess, q, *k, format, *maxContext, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := askLoop(ctx, sess, os.Stdin, os.Stdout, *k, format, *maxContext); err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
}

func askOnce(ctx context.Context, sess *session.Session, question string, k int, format cli.OutputFormat, maxContext int, w io.Writer) error {
	result, err := sess.Ask(ctx, question, k)
	if err != nil {
		return err
	}
	return cli.WriteAnswer(w, result, format, maxContext)
}

// askLoop answers questions read line by line from r until EOF. Blank lines are skipped
// and a failed question is reported without ending the loop.
func askLoop(ctx context.Context, sess *session.Session, r io.Reader, w io.Writer, k int, format cli.OutputFormat, maxContext int) error {
	scanner := bufio.NewScanner(r)
	for {
		if format == cli.OutputText {
			fmt.Fprint(w, "\n> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		if err := askOnce(ctx, sess, q, k, format, maxContext, w); err != nil {
			if ctx.Err() != nil {
				return err
			}
			fmt.Fprintf(w, "error: %v\n", err)
		}
	}
}

// Components holds initialized services.
type Components struct {
	Embedder    embedding.Embedder
	Synthesizer answer.Synthesizer
	Indexer     *indexer.Indexer
	Sessions    *session.Manager
}

func (c *Components) Close() {
	if c.Sessions != nil {
		c.Sessions.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

// initializeComponents resolves the provider credential first so a missing key
// fails at startup rather than on the first question.
func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	token, err := cfg.ResolveAPIKey()
	if err != nil {
		return nil, err
	}
	embedder, err := embedding.New(&cfg.Embedding, token, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	synth, err := answer.New(cfg, token, logger)
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to initialize answer synthesizer: %w", err)
	}
	idx, err := indexer.New(cfg, embedder, logger)
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to initialize indexer: %w", err)
	}
	sessions := session.NewManager(session.Deps{
		Indexer:     idx,
		Synthesizer: synth,
		TopK:        cfg.Retrieval.TopK,
		Logger:      logger,
	}, cfg.Session.TTL, cfg.Session.CleanupInterval)
	return &Components{
		Embedder:    embedder,
		Synthesizer: synth,
		Indexer:     idx,
		Sessions:    sessions,
	}, nil
}

func printUsage() {
	fmt.Println(`docqa - Ask questions about a PDF document

Usage:
  docqa server [flags]                 Start the HTTP server
  docqa ask -pdf <file> [question]     Answer questions about a PDF
  docqa version                        Show version
  docqa help                           Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/docqa/config.yaml)
  --debug            Enable debug logging

Ask Flags:
  --config string    Config file path
  --pdf string       PDF document to ask about
  --k int            Number of context chunks (default: retrieval.top_k from config)
  --output string    Output format: text or json (default: text)
  --max-context int  Truncate context chunks in text output (default: 300)
  --debug            Enable debug logging

The provider API key is read from the environment variable named by llm.api_key_env
(default NVIDIA_API_KEY). A .env file in the current directory is loaded first.

Examples:
  docqa server
  docqa ask -pdf report.pdf "What is the main conclusion?"
  docqa ask -pdf report.pdf -output json what is the budget
  docqa ask -pdf report.pdf            # interactive, one question per line`)
}
