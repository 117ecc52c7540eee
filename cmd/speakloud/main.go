package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	texttospeechapi "cloud.google.com/go/texttospeech/apiv1"
	"github.com/alecthomas/kong"
	"github.com/fwojciec/speakloud"
	"github.com/fwojciec/speakloud/ahocorasick"
	"github.com/fwojciec/speakloud/distiller"
	"github.com/fwojciec/speakloud/extract"
	"github.com/fwojciec/speakloud/ffmpeg"
	"github.com/fwojciec/speakloud/fs"
	"github.com/fwojciec/speakloud/gcs"
	"github.com/fwojciec/speakloud/gemini"
	"github.com/fwojciec/speakloud/goquery"
	speakhttp "github.com/fwojciec/speakloud/http"
	"github.com/fwojciec/speakloud/minio"
	"github.com/fwojciec/speakloud/process"
	"github.com/fwojciec/speakloud/readability"
	"github.com/fwojciec/speakloud/rod"
	speakslog "github.com/fwojciec/speakloud/slog"
	"github.com/fwojciec/speakloud/sqlite"
	"github.com/fwojciec/speakloud/synth"
	"github.com/fwojciec/speakloud/texttospeech"
	"github.com/fwojciec/speakloud/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	RuleService speakloud.RuleService
	ItemStore   *sqlite.ItemStore

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	for i := len(m.closers) - 1; i >= 0; i-- {
		_ = m.closers[i].Close()
	}
	m.closers = nil
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("speakloud"),
		kong.Description("Turn web articles into narrated audio"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'speakloud --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.LogLevel, cli.LogFormat)

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SPEAKLOUD_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.RuleService = speakslog.NewLoggingRuleService(sqlite.NewRuleService(m.DB), deps.Logger)
	m.ItemStore = sqlite.NewItemStore(m.DB)
	deps.Rules = m.RuleService
	deps.Items = m.ItemStore

	switch cmd {
	case "extract":
		var opts []extract.Option
		if cli.Extract.Exhaustive {
			opts = append(opts, extract.WithExhaustive())
		}
		opts = append(opts, extract.WithMinLength(cli.Extract.MinLength))
		pipeline, err := m.newPipeline(deps.Logger, cli.FetchRate, opts...)
		if err != nil {
			return err
		}
		deps.Extractor = speakslog.NewLoggingArticleExtractor(pipeline, deps.Logger)

	case "process":
		pipeline, err := m.newPipeline(deps.Logger, cli.FetchRate)
		if err != nil {
			return err
		}
		synthesizer, err := m.newSynthesizer(ctx, &cli.Process, deps.Logger, stderr)
		if err != nil {
			return err
		}
		var sink speakloud.ItemSink = m.ItemStore
		if cli.Process.RecordsDir != "" {
			sink = fs.NewItemWriter(cli.Process.RecordsDir)
		}
		deps.Processor = process.NewProcessor(
			speakslog.NewLoggingArticleExtractor(pipeline, deps.Logger),
			speakslog.NewLoggingSynthesizer(synthesizer, deps.Logger),
			sink,
			process.WithTimeout(cli.Process.Timeout),
			process.WithLogger(deps.Logger),
		)
	}

	return kongCtx.Run(deps)
}

// newPipeline wires the extraction strategies in default order.
func (m *Main) newPipeline(logger *slog.Logger, fetchRate float64, opts ...extract.Option) (*extract.Pipeline, error) {
	limiter := speakhttp.NewDomainLimiter(fetchRate)
	fetcher := speakhttp.NewFetcher(speakhttp.WithLimiter(limiter))
	cleaner := goquery.NewCleaner()

	var domainOpts []goquery.DomainOption
	if path := os.Getenv("SPEAKLOUD_DOMAIN_SELECTORS"); path != "" {
		selectors, err := goquery.LoadSelectors(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load domain selectors: %w", err)
		}
		domainOpts = append(domainOpts, goquery.WithSelectors(selectors))
	}

	// Chrome is only launched if the browser strategy is reached.
	renderer := rod.NewRenderer(rod.WithLimiter(limiter))
	m.closers = append(m.closers, renderer)

	extractors := speakslog.WrapExtractors([]speakloud.Extractor{
		trafilatura.NewExtractor(),
		distiller.NewExtractor(),
		readability.NewExtractor(),
		goquery.NewDomainExtractor(domainOpts...),
		rod.NewExtractor(renderer, cleaner, readability.NewExtractor(readability.WithName(speakloud.StrategyBrowser))),
	}, logger)

	rules := extract.NewRuleCache(m.RuleService, extract.WithCacheLogger(logger))

	opts = append([]extract.Option{
		extract.WithRules(rules),
		extract.WithLogger(logger),
	}, opts...)

	return extract.NewPipeline(
		speakslog.NewLoggingFetcher(fetcher, logger),
		cleaner,
		goquery.NewMetadataResolver(),
		ahocorasick.NewSanitizer(),
		extractors,
		opts...,
	), nil
}

// newSynthesizer wires the speech backend and artifact store chosen by
// flags and environment.
func (m *Main) newSynthesizer(ctx context.Context, cmd *ProcessCmd, logger *slog.Logger, stderr io.Writer) (*synth.Synthesizer, error) {
	var backend speakloud.SpeechBackend
	switch cmd.Backend {
	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return nil, fmt.Errorf("GEMINI_API_KEY not set")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		backend = gemini.NewBackend(client)
	default:
		client, err := texttospeechapi.NewClient(ctx)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Set GOOGLE_APPLICATION_CREDENTIALS or run 'gcloud auth application-default login'")
			return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
		}
		m.closers = append(m.closers, client)
		backend = texttospeech.NewBackend(client)
	}

	store, err := m.newArtifactStore(ctx, cmd.OutputDir)
	if err != nil {
		return nil, err
	}

	return synth.NewSynthesizer(
		speakslog.NewLoggingSpeechBackend(backend, logger),
		ffmpeg.NewConcatenator(),
		ffmpeg.NewProber(),
		store,
		synth.WithLogger(logger),
	), nil
}

// newArtifactStore picks GCS, then MinIO, then the local directory.
func (m *Main) newArtifactStore(ctx context.Context, outputDir string) (speakloud.ArtifactStore, error) {
	if bucket := os.Getenv("GCS_BUCKET_NAME"); bucket != "" {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		m.closers = append(m.closers, client)
		return gcs.NewArtifactStore(client, bucket), nil
	}

	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		store, err := minio.New(ctx, minio.Config{
			Endpoint:      endpoint,
			AccessKey:     os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey:     os.Getenv("MINIO_SECRET_KEY"),
			Bucket:        os.Getenv("MINIO_BUCKET"),
			PublicBaseURL: os.Getenv("MINIO_PUBLIC_URL"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to object storage: %w", err)
		}
		return store, nil
	}

	return fs.NewArtifactStore(outputDir), nil
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	_ = lvl.UnmarshalText([]byte(level))
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func defaultDBPath() string {
	if path := os.Getenv("SPEAKLOUD_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "speakloud.db"
	}
	dir := filepath.Join(home, ".speakloud")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "speakloud.db")
}
