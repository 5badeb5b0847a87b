// Faro is a personal productivity agent driven by an LLM tool loop.
//
// It talks to the user over Telegram, keeps tasks, notes, documents
// and contacts in Notion, reads mail over IMAP, manages calendar
// blocks over CalDAV, reviews an editorial sheet, and remembers things
// between conversations in SQLite. Configuration is loaded from a
// single YAML file discovered automatically (see
// [config.DefaultSearchPaths]).
//
// Usage:
//
//	faro serve                      Start the Telegram bot and schedulers
//	faro ask <pregunta>             Ask a single question (for testing)
//	faro import-contacts <f.vcf>    Import a vCard file into Notion
//	faro version                    Print version and build information
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/dvila/faro/internal/agent"
	"github.com/dvila/faro/internal/buildinfo"
	"github.com/dvila/faro/internal/caldav"
	"github.com/dvila/faro/internal/config"
	"github.com/dvila/faro/internal/email"
	"github.com/dvila/faro/internal/fetch"
	"github.com/dvila/faro/internal/llm"
	"github.com/dvila/faro/internal/memory"
	"github.com/dvila/faro/internal/notion"
	"github.com/dvila/faro/internal/rag"
	"github.com/dvila/faro/internal/retry"
	"github.com/dvila/faro/internal/search"
	"github.com/dvila/faro/internal/session"
	"github.com/dvila/faro/internal/sheets"
	"github.com/dvila/faro/internal/telegram"
	"github.com/dvila/faro/internal/tools"
	"github.com/dvila/faro/internal/transcribe"
)

func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point. OS-level dependencies come in as
// parameters so the lifecycle can be driven from tests.
func run(ctx context.Context, stdout io.Writer, stderr io.Writer, args []string) error {
	// Secrets commonly live in a .env next to the binary; the YAML
	// config references them through ${VAR} expansion.
	_ = godotenv.Load()

	var configPath string
	var outputFmt string
	var command string
	var cmdArgs []string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case (args[i] == "-o" || args[i] == "--output") && i+1 < len(args):
			outputFmt = args[i+1]
			i++
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			if command != "" {
				cmdArgs = append(cmdArgs, args[i])
			} else {
				return fmt.Errorf("unknown flag: %s", args[i])
			}
		}
	}

	if outputFmt == "" {
		outputFmt = "text"
	}
	if outputFmt != "text" && outputFmt != "json" {
		return fmt.Errorf("unknown output format: %q (expected text or json)", outputFmt)
	}

	switch command {
	case "serve":
		return runServe(ctx, stdout, configPath)
	case "ask":
		if len(cmdArgs) == 0 {
			return fmt.Errorf("usage: faro ask <pregunta>")
		}
		return runAsk(ctx, stdout, configPath, strings.Join(cmdArgs, " "))
	case "import-contacts":
		if len(cmdArgs) == 0 {
			return fmt.Errorf("usage: faro import-contacts <archivo.vcf>")
		}
		return runImportContacts(ctx, stdout, configPath, cmdArgs[0])
	case "version":
		return runVersion(stdout, outputFmt)
	case "":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func runVersion(w io.Writer, outputFmt string) error {
	info := buildinfo.Info()
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintln(w, buildinfo.String())
	for _, k := range []string{"version", "git_commit", "build_time", "go_version", "os", "arch"} {
		if v, ok := info[k]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", k+":", v)
		}
	}
	return nil
}

func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "Faro - Personal Productivity Agent")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: faro [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve                    Start the Telegram bot and briefing scheduler")
	fmt.Fprintln(w, "  ask <pregunta>           Ask a single question (for testing)")
	fmt.Fprintln(w, "  import-contacts <vcf>    Import a vCard file into the Notion contacts DB")
	fmt.Fprintln(w, "  version                  Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>    Path to config file (default: auto-discover)")
	fmt.Fprintln(w, "  -o, --output fmt  Output format: text (default) or json")
	return nil
}

// newLogger standardizes the slog handler configuration across
// subcommands, including the TRACE level name.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}))
}

func loadConfig(explicit string) (*config.Config, string, error) {
	cfgPath, err := config.FindConfig(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfgPath, fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	return cfg, cfgPath, nil
}

// runtimeDeps is everything buildAgent wires together, kept so serve
// can reuse individual pieces (the Notion client for document uploads,
// the Groq transcriber for voice notes).
type runtimeDeps struct {
	agent       *agent.Agent
	llm         llm.Client
	notion      *notion.Client
	transcriber *transcribe.Client
	location    *time.Location
	db          *sql.DB
}

func (d *runtimeDeps) Close() {
	if d.db != nil {
		d.db.Close()
	}
}

// buildAgent constructs the full agent from configuration. Optional
// backends that are not configured are simply left out; the tool
// registry only exposes tools whose backend exists.
func buildAgent(cfg *config.Config, logger *slog.Logger) (*runtimeDeps, error) {
	if cfg.Anthropic.APIKey == "" {
		return nil, fmt.Errorf("anthropic.api_key is required")
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	deps := &runtimeDeps{location: location}

	var notionClient *notion.Client
	if cfg.Notion.Token != "" {
		notionClient = notion.NewClient(cfg.Notion.Token, notion.Databases{
			Tasks:    cfg.Notion.TasksDBID,
			Notes:    cfg.Notion.NotesDBID,
			TimeLog:  cfg.Notion.TimeLogDBID,
			Docs:     cfg.Notion.DocsDBID,
			Contacts: cfg.Notion.ContactsDBID,
		}, logger)
		deps.notion = notionClient
	} else {
		logger.Warn("Notion not configured - task, document and contact tools disabled")
	}

	var emailClient *email.Client
	if imap := emailConfig(cfg); imap.Configured() {
		emailClient = email.NewClient(imap, logger)
	}

	var calendarClient *caldav.Client
	calCfg := caldav.Config{
		URL:      cfg.CalDAV.URL,
		Username: cfg.CalDAV.Username,
		Password: cfg.CalDAV.Password,
		Calendar: cfg.CalDAV.Calendar,
	}
	if calCfg.Configured() {
		calendarClient = caldav.NewClient(calCfg, location, logger)
	}

	// Memory and editorial review marks share one SQLite database.
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", cfg.DataDir, err)
	}
	dbPath := cfg.DataDir + "/faro.db"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	deps.db = db

	memStore, err := memory.NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("database opened", "path", dbPath)

	var editorial *sheets.Queue
	if cfg.Editorial.CSVURL != "" {
		reviews, err := sheets.NewReviewStore(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		editorial = sheets.NewQueue(sheets.NewClient(cfg.Editorial.CSVURL, logger), reviews)
	}

	var searcher search.Provider
	if cfg.Perplexity.APIKey != "" {
		searcher = search.NewPerplexity(cfg.Perplexity.APIKey, cfg.Perplexity.Model)
	}

	groqCfg := transcribe.Config{
		APIKey:   cfg.Groq.APIKey,
		Model:    cfg.Groq.Model,
		Language: cfg.Groq.Language,
	}
	if groqCfg.Configured() {
		deps.transcriber = transcribe.NewClient(groqCfg)
	}

	registry := tools.NewRegistry(tools.Deps{
		Notion:    notionClient,
		Email:     emailClient,
		Calendar:  calendarClient,
		Editorial: editorial,
		Memory:    memStore,
		Search:    searcher,
		Fetcher:   fetch.New(),
		Branches:  cfg.Branches,
		Location:  location,
		Logger:    logger,
	})
	if err := registry.Validate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("tool registry: %w", err)
	}
	logger.Info("tools registered", "count", len(registry.Names()))

	var retriever *rag.Retriever
	if notionClient != nil && cfg.Notion.DocsDBID != "" {
		retriever = rag.NewRetriever(notionDocStore{notionClient}, logger)
	}

	deps.llm = llm.NewAnthropicClient(cfg.Anthropic.APIKey, logger, llm.WithMaxTokens(cfg.Anthropic.MaxTokens))

	deps.agent = agent.New(agent.Config{
		Logger:    logger,
		Client:    deps.llm,
		Tools:     registry,
		Sessions:  session.NewStore(),
		Memory:    memStore,
		Retriever: retriever,
		Branches:  cfg.Branches,

		Model:         cfg.Anthropic.Model,
		MaxIterations: cfg.Agent.MaxIterations,
		Retry: retry.Policy{
			MaxAttempts: cfg.Agent.RetryAttempts,
			Delay:       time.Duration(cfg.Agent.RetryDelaySec) * time.Second,
			Retryable:   llm.IsTransient,
			Logger:      logger,
		},
	})
	return deps, nil
}

func emailConfig(cfg *config.Config) email.Config {
	return email.Config{
		Host:     cfg.IMAP.Host,
		Port:     cfg.IMAP.Port,
		Username: cfg.IMAP.Username,
		Password: cfg.IMAP.Password,
		TLS:      cfg.IMAP.TLS,
	}
}

// notionDocStore adapts the Notion client to the retriever's document
// interface.
type notionDocStore struct {
	client *notion.Client
}

func (s notionDocStore) SearchDocuments(ctx context.Context, query string) ([]rag.Document, error) {
	docs, err := s.client.SearchDocuments(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	out := make([]rag.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, rag.Document{ID: d.ID, Title: d.Title, Date: d.Date, Tags: d.Tags})
	}
	return out, nil
}

func (s notionDocStore) DocumentContent(ctx context.Context, id string) (string, error) {
	return s.client.DocumentContent(ctx, id)
}

// runAsk boots a minimal agent and processes a single question.
func runAsk(ctx context.Context, stdout io.Writer, configPath, question string) error {
	logger := newLogger(stdout, slog.LevelWarn)

	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	deps, err := buildAgent(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	resp, err := deps.agent.ProcessTurn(ctx, agent.Request{
		SessionKey: "cli",
		Text:       question,
	})
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	fmt.Fprintln(stdout, resp.Text)
	return nil
}

// runServe is the primary operating mode: Telegram bridge plus the
// briefing scheduler, running until SIGINT or SIGTERM.
func runServe(ctx context.Context, stdout io.Writer, configPath string) error {
	logger := newLogger(stdout, slog.LevelInfo)
	logger.Info("starting Faro",
		"version", buildinfo.Version,
		"commit", buildinfo.GitCommit,
		"built", buildinfo.BuildTime,
	)

	cfg, cfgPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.LogLevel != "" {
		level, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = newLogger(stdout, level)
	}
	logger.Info("config loaded", "path", cfgPath, "model", cfg.Anthropic.Model)

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required for serve")
	}

	deps, err := buildAgent(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Startup health check. A failure is logged rather than fatal: the
	// per-turn retry policy handles transient provider outages.
	pingCtx, cancelPing := context.WithTimeout(ctx, 15*time.Second)
	if err := deps.llm.Ping(pingCtx); err != nil {
		logger.Warn("model API not reachable at startup", "error", err)
	} else {
		logger.Info("model API reachable")
	}
	cancelPing()

	botClient := telegram.NewClient(cfg.Telegram.Token, logger)
	bridge := telegram.NewBridge(telegram.BridgeConfig{
		Client:      botClient,
		Runner:      deps.agent,
		Transcriber: transcriberOrNil(deps),
		Documents:   documentsOrNil(deps),
		Logger:      logger,
		SendRetry: retry.Policy{
			MaxAttempts: 3,
			Delay:       2 * time.Second,
			Retryable:   isTelegramRateLimit,
			Logger:      logger,
		},
	})

	if cfg.Telegram.ChatID != "" {
		chatID, err := strconv.ParseInt(cfg.Telegram.ChatID, 10, 64)
		if err != nil {
			return fmt.Errorf("telegram.chat_id %q is not numeric: %w", cfg.Telegram.ChatID, err)
		}
		scheduler := telegram.NewScheduler(telegram.SchedulerConfig{
			Bridge:       bridge,
			ChatID:       chatID,
			Location:     deps.location,
			BriefingHour: cfg.Telegram.BriefingHour,
			SummaryHour:  cfg.Telegram.SummaryHour,
			Logger:       logger,
		})
		go scheduler.Start(ctx)
	} else {
		logger.Warn("telegram.chat_id not set - scheduled briefings disabled, use /myid to get it")
	}

	bridge.Start(ctx)
	logger.Info("shutdown complete")
	return nil
}

// transcriberOrNil avoids handing the bridge a typed nil interface.
func transcriberOrNil(deps *runtimeDeps) telegram.Transcriber {
	if deps.transcriber == nil {
		return nil
	}
	return deps.transcriber
}

func documentsOrNil(deps *runtimeDeps) telegram.DocumentSaver {
	if deps.notion == nil {
		return nil
	}
	return deps.notion
}

func isTelegramRateLimit(err error) bool {
	apiErr, ok := err.(*telegram.APIError)
	return ok && apiErr.Code == 429
}
