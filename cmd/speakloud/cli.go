package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/speakloud"
	"github.com/fwojciec/speakloud/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Rules     speakloud.RuleService
	Items     ItemFinder
	Extractor speakloud.ArticleExtractor
	Processor Processor
}

// ItemFinder looks up recorded items.
type ItemFinder interface {
	FindItemByID(ctx context.Context, id string) (*sqlite.Item, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	LogLevel  string  `default:"info" enum:"debug,info,warn,error" env:"SPEAKLOUD_LOG_LEVEL" help:"Log level"`
	LogFormat string  `default:"text" enum:"text,json" help:"Log output format"`
	FetchRate float64 `default:"1" env:"SPEAKLOUD_FETCH_RATE" help:"Requests per second to one site, shared by fetch and browser render (0 disables)"`

	Extract ExtractCmd `cmd:"" help:"Extract article text from a URL"`
	Process ProcessCmd `cmd:"" help:"Extract and narrate an article"`
	Rules   RulesCmd   `cmd:"" help:"Manage extraction rules"`
	Item    ItemCmd    `cmd:"" help:"Show a processed item"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL        string `arg:"" help:"Article URL"`
	Exhaustive bool   `short:"x" help:"Run every strategy and pick the best result"`
	MinLength  int    `default:"250" help:"Minimum article length in characters"`
	Full       bool   `help:"Print the full result as JSON"`
}

// ProcessCmd is the "process" subcommand.
type ProcessCmd struct {
	URL        string        `arg:"" help:"Article URL"`
	ItemID     string        `name:"id" help:"Item ID (default: random UUID)"`
	Voice      string        `help:"Voice name (default: en-US-Standard-C)"`
	Backend    string        `default:"texttospeech" enum:"texttospeech,gemini" env:"SPEAKLOUD_TTS_BACKEND" help:"Speech backend"`
	OutputDir  string        `default:"audio" env:"SPEAKLOUD_OUTPUT_DIR" help:"Local artifact directory when no bucket is configured"`
	RecordsDir string        `help:"Write item records as JSON files here instead of the database"`
	Overwrite  bool          `short:"f" help:"Narrate again even if audio exists"`
	NoAudio    bool          `help:"Stop after extraction"`
	Timeout    time.Duration `default:"3m" help:"Overall deadline"`
}

// RulesCmd groups the rule subcommands.
type RulesCmd struct {
	Add    RulesAddCmd    `cmd:"" help:"Add an extraction rule"`
	List   RulesListCmd   `cmd:"" help:"List extraction rules"`
	Delete RulesDeleteCmd `cmd:"" help:"Delete an extraction rule"`
}

// RulesAddCmd is the "rules add" subcommand.
type RulesAddCmd struct {
	Pattern     string `arg:"" help:"Domain or URL prefix"`
	Extractor   string `arg:"" help:"Strategy to force (trafilatura, distiller, readability, domain, browser)"`
	Type        string `short:"t" default:"domain" enum:"domain,url_prefix" help:"Pattern type"`
	Description string `short:"d" help:"Why the rule exists"`
	CreatedBy   string `env:"USER" help:"Rule author"`
}

// RulesListCmd is the "rules list" subcommand.
type RulesListCmd struct{}

// RulesDeleteCmd is the "rules delete" subcommand.
type RulesDeleteCmd struct {
	ID    string `arg:"" help:"Rule ID"`
	Force bool   `help:"Confirm deletion"`
}

// ItemCmd is the "item" subcommand.
type ItemCmd struct {
	ID string `arg:"" help:"Item ID"`
}
