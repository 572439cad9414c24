// Package main provides the tutorbot console assistant: a personalized
// tutoring chat that keeps a short session history and a bounded transcript.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	appconfig "github.com/entrhq/tutorbot/pkg/config"
	"github.com/entrhq/tutorbot/pkg/conversation"
	"github.com/entrhq/tutorbot/pkg/executor/cli"
	"github.com/entrhq/tutorbot/pkg/knowledge"
	"github.com/entrhq/tutorbot/pkg/llm"
	"github.com/entrhq/tutorbot/pkg/llm/openai"
	"github.com/entrhq/tutorbot/pkg/logging"
	"github.com/entrhq/tutorbot/pkg/observability"
	"github.com/entrhq/tutorbot/pkg/profile"
	"github.com/entrhq/tutorbot/pkg/prompts"
	"github.com/entrhq/tutorbot/pkg/sentiment"
	"github.com/entrhq/tutorbot/pkg/session"
	"github.com/entrhq/tutorbot/pkg/types"
)

const version = "0.1.0"

// Config holds the command line configuration. Empty values defer to the
// environment and the config file.
type Config struct {
	ConfigPath     string
	APIKey         string
	BaseURL        string
	Model          string
	TranscriptPath string
	MaxBytes       int64
	ProfilePath    string
	KnowledgePath  string
	Scorer         string
	SentimentModel string
	SystemPrompt   string
	LogLevel       string
	LogDir         string
	MetricsAddr    string
	ShowVersion    bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("tutorbot v%s\n", version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("\nShutting down.")
			return
		}
		stop()
		log.Fatalf("tutorbot: %v", err)
	}
}

func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.ConfigPath, "config", "", "Config file (default ~/.tutorbot/config.json)")
	flag.StringVar(&config.APIKey, "api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	flag.StringVar(&config.BaseURL, "base-url", "", "OpenAI API base URL (or set OPENAI_BASE_URL env var)")
	flag.StringVar(&config.Model, "model", "", "LLM model to use (or set "+appconfig.EnvModel+", default "+openai.DefaultModel+")")
	flag.StringVar(&config.TranscriptPath, "transcript", "", "Transcript file (default "+logging.DefaultTranscriptPath+")")
	flag.Int64Var(&config.MaxBytes, "max-bytes", 0, "Transcript size budget in bytes (default 1 MiB)")
	flag.StringVar(&config.ProfilePath, "profile", "", "User profile YAML file (default: built-in profile)")
	flag.StringVar(&config.KnowledgePath, "knowledge", "", "Knowledge YAML file or directory of Markdown notes (default: built-in topics)")
	flag.StringVar(&config.Scorer, "scorer", "", "Sentiment scorer: lexicon or model")
	flag.StringVar(&config.SentimentModel, "sentiment-model", "", "Model used by the model scorer (default: the chat model)")
	flag.StringVar(&config.SystemPrompt, "prompt", "", "Optional system instructions sent with every request")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Diagnostic log level: debug, info, warn, error")
	flag.StringVar(&config.LogDir, "log-dir", "", "Diagnostic log directory (default ~/.tutorbot/logs)")
	flag.StringVar(&config.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics and /healthz on this address (e.g. 127.0.0.1:9464)")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tutorbot - a personalized tutoring chat\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tutorbot [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY     OpenAI API key\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_BASE_URL    OpenAI API base URL (for compatible APIs)\n")
		fmt.Fprintf(os.Stderr, "  %-18s Model override\n", appconfig.EnvModel)
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tutorbot\n")
		fmt.Fprintf(os.Stderr, "  tutorbot -profile ana.yaml -knowledge notes/\n")
		fmt.Fprintf(os.Stderr, "  tutorbot -scorer model -model gpt-4o\n")
	}

	flag.Parse()
	return config
}

// run wires every component and drives the console session until the user
// quits, input ends or ctx is canceled.
func run(ctx context.Context, c *Config, in io.Reader, out io.Writer) error {
	cfg, err := appconfig.Load(c.ConfigPath)
	if err != nil {
		return err
	}

	logDir := c.LogDir
	if logDir == "" {
		if logDir, err = logging.DefaultLogDirectory(); err != nil {
			return types.NewError(types.KindConfiguration, "log directory", err)
		}
	}
	level := logging.ParseLevel(c.LogLevel)
	diag, err := logging.NewLogger(logDir, "tutorbot", level)
	if err != nil {
		// diag already falls back to stderr
		diag.Warn("continuing without file logging")
	}
	defer diag.Close()

	provider, err := appconfig.BuildProvider(c.Model, c.BaseURL, c.APIKey, cfg.LLM)
	if err != nil {
		return err
	}

	prof := profile.Default()
	if c.ProfilePath != "" {
		if prof, err = profile.Load(c.ProfilePath); err != nil {
			return types.NewError(types.KindConfiguration, "load profile", err)
		}
	}

	kb := knowledge.Default()
	if c.KnowledgePath != "" {
		if kb, err = knowledge.Load(ctx, c.KnowledgePath, knowledge.WithLogger(diag.Logger)); err != nil {
			return types.NewError(types.KindConfiguration, "load knowledge", err)
		}
	}

	scorer, err := buildScorer(c, cfg, provider)
	if err != nil {
		return err
	}

	transcriptPath := firstNonEmpty(c.TranscriptPath, cfg.Transcript.Path)
	maxBytes := cfg.Transcript.MaxBytes
	if c.MaxBytes > 0 {
		maxBytes = c.MaxBytes
	}
	transcript := logging.NewTranscript(transcriptPath, logging.WithMaxBytes(maxBytes))

	var genOpts []llm.GeneratorOption
	if c.SystemPrompt != "" {
		genOpts = append(genOpts, llm.WithSystemPrompt(c.SystemPrompt))
	}

	loopOpts := []conversation.Option{
		conversation.WithWindow(session.NewWindow(session.WithCapacity(cfg.Session.Capacity))),
		conversation.WithLogger(diag.Logger),
		conversation.WithFallback(cfg.Session.Fallback),
		conversation.WithQuitCommand(cfg.Session.QuitCommand),
	}
	// Token counting loads an encoding on first use, so only pay for it
	// when the counts are actually logged.
	if level <= slog.LevelDebug {
		loopOpts = append(loopOpts, conversation.WithTokenCounter(prompts.NewTokenCounter(provider.GetModel())))
	}

	if c.MetricsAddr != "" {
		ln, err := net.Listen("tcp", c.MetricsAddr)
		if err != nil {
			return types.NewError(types.KindConfiguration, "metrics listener", err)
		}
		metrics := observability.NewMetrics()
		loopOpts = append(loopOpts, conversation.WithObserver(metrics))

		metricsCtx, stopMetrics := context.WithCancel(ctx)
		served := make(chan struct{})
		go func() {
			defer close(served)
			if err := observability.ServeListener(metricsCtx, ln, metrics, diag.Logger); err != nil {
				diag.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			stopMetrics()
			<-served
		}()
	}

	loop, err := conversation.NewLoop(conversation.Deps{
		Scorer:     scorer,
		Generator:  llm.NewGenerator(provider, genOpts...),
		Transcript: transcript,
		Profile:    prof,
		Knowledge:  kb,
	}, loopOpts...)
	if err != nil {
		return err
	}

	diag.Info("session starting",
		"model", provider.GetModel(),
		"transcript", transcript.Path(),
		"max_bytes", transcript.MaxBytes(),
		"profile", prof.Name(),
		"topics", kb.Len(),
	)

	executor := cli.NewExecutor(loop,
		cli.WithReader(in),
		cli.WithWriter(out),
		cli.WithLogger(diag.Logger),
		cli.WithQuitCommand(cfg.Session.QuitCommand),
	)
	return executor.Run(ctx)
}

func buildScorer(c *Config, cfg *appconfig.Config, provider *openai.Provider) (sentiment.Scorer, error) {
	switch name := firstNonEmpty(c.Scorer, cfg.Sentiment.Scorer); name {
	case appconfig.ScorerLexicon:
		return sentiment.NewLexiconScorer(), nil
	case appconfig.ScorerModel:
		model := firstNonEmpty(c.SentimentModel, cfg.Sentiment.Model, provider.GetModel())
		return sentiment.NewModelScorer(provider.Client(), model), nil
	default:
		return nil, types.NewError(types.KindConfiguration, "build scorer",
			fmt.Errorf("unknown scorer %q", name))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
