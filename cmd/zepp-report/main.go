// Zepp Sleep Report
//
// Batch reporting tool for Mi Fit/Zepp devices using the unofficial Huami
// API. Downloads one week of per-night sleep data, decodes the proprietary
// summary payloads, exports the normalized records to CSV/XLSX, optionally
// archives them to Postgres, and sends an AI-written weekly report by email.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/blaisecz/zepp-sleep-report/internal/cache"
	"github.com/blaisecz/zepp-sleep-report/internal/config"
	"github.com/blaisecz/zepp-sleep-report/internal/domain"
	"github.com/blaisecz/zepp-sleep-report/internal/export"
	"github.com/blaisecz/zepp-sleep-report/internal/langfuse"
	"github.com/blaisecz/zepp-sleep-report/internal/llm"
	"github.com/blaisecz/zepp-sleep-report/internal/logger"
	"github.com/blaisecz/zepp-sleep-report/internal/mail"
	"github.com/blaisecz/zepp-sleep-report/internal/repository"
	"github.com/blaisecz/zepp-sleep-report/internal/service"
	"github.com/blaisecz/zepp-sleep-report/internal/telemetry"
	"github.com/blaisecz/zepp-sleep-report/internal/zepp"
	"github.com/blaisecz/zepp-sleep-report/pkg/dateutil"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	fromFlag := flag.String("from", "", "range start (YYYY-MM-DD); defaults to last complete week")
	toFlag := flag.String("to", "", "range end (YYYY-MM-DD); defaults to last complete week")
	outFlag := flag.String("out", "", "CSV output path (overrides CSV_PATH)")
	noAI := flag.Bool("no-ai", false, "skip the OpenAI weekly analysis")
	noEmail := flag.Bool("no-email", false, "skip sending the report email")
	flag.Parse()

	cfg := config.Load()
	if *outFlag != "" {
		cfg.CSVPath = *outFlag
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(context.Background(), cfg, log, *fromFlag, *toFlag, *noAI, *noEmail); err != nil {
		log.Fatal("report run failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, fromFlag, toFlag string, noAI, noEmail bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))

	shutdown, err := telemetry.InitTracer(ctx, cfg, "zepp-sleep-report")
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdown(ctx)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	from, to, err := resolveWindow(fromFlag, toFlag, loc)
	if err != nil {
		return err
	}
	windowLabel := fmt.Sprintf("Semana %s a %s", from, to)
	log.Info("resolved reporting window", zap.String("from", from.String()), zap.String("to", to.String()))

	// Authenticate and build the per-day summary source.
	creds, err := zepp.NewAuthenticator(log).Login(ctx, cfg.ZeppEmail, cfg.ZeppPassword)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	client := zepp.NewClient(creds, log)

	var summaryCache *cache.SummaryCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		summaryCache = cache.New(rdb, creds.UserID, cfg.CacheTTL, log)
	}
	source := cache.NewSource(summaryCache, client.NewRangeSource(from, to))

	// Collect the window.
	collector := service.NewWeeklyCollector(
		source,
		service.NewSummaryDecoder(log),
		service.NewNightBuilder(loc, log),
		log,
	)
	dataset, err := collector.Collect(ctx, from, to)
	if err != nil {
		return err
	}

	// Export tabular files.
	if err := export.WriteCSVFile(cfg.CSVPath, dataset); err != nil {
		return err
	}
	log.Info("exported CSV", zap.String("path", cfg.CSVPath), zap.Int("days", len(dataset.Days)))
	if err := export.WriteXLSXFile(cfg.XLSXPath, dataset); err != nil {
		return err
	}
	log.Info("exported XLSX", zap.String("path", cfg.XLSXPath))

	// Archive populated nights (optional).
	if cfg.DatabaseURL != "" {
		if err := archive(ctx, cfg, creds.UserID, dataset); err != nil {
			// Archival is best-effort; the report itself already exists.
			log.Error("night archive failed", zap.Error(err))
		} else {
			log.Info("archived nights", zap.Int("nights", len(dataset.Nights())))
		}
	}

	// AI weekly analysis (optional).
	analysis := ""
	if !noAI && cfg.OpenAIAPIKey != "" {
		analysis = analyze(ctx, cfg, log, dataset, windowLabel)
	}

	attachments := []string{cfg.CSVPath, cfg.XLSXPath}
	if analysis != "" {
		report := fmt.Sprintf("# Informe de sueño Mi Fit / Zepp (%s)\n\n%s\n", windowLabel, analysis)
		if err := os.WriteFile(cfg.ReportPath, []byte(report), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Info("wrote AI report", zap.String("path", cfg.ReportPath))
		attachments = append(attachments, cfg.ReportPath)
	}

	// Record the run in Langfuse (no-op when unconfigured).
	langfuse.NewClient(langfuse.Config{
		BaseURL:     cfg.LangfuseBaseURL,
		PublicKey:   cfg.LangfusePublicKey,
		SecretKey:   cfg.LangfuseSecretKey,
		Environment: cfg.LangfuseEnv,
	}, log).TraceRun(ctx, langfuse.RunTrace{
		RunID:       runID,
		WindowLabel: windowLabel,
		Input:       map[string]any{"from": from.String(), "to": to.String()},
		Output: map[string]any{
			"days":         len(dataset.Days),
			"populated":    len(dataset.Nights()),
			"has_analysis": analysis != "",
		},
		Tags: []string{"weekly-report"},
	})

	// Deliver by email (optional).
	if !noEmail {
		if err := deliver(ctx, cfg, log, windowLabel, analysis, dataset, attachments); err != nil {
			return err
		}
	}

	return nil
}

func resolveWindow(fromFlag, toFlag string, loc *time.Location) (dateutil.Date, dateutil.Date, error) {
	if fromFlag == "" && toFlag == "" {
		from, to := dateutil.LastCompleteWeek(loc)
		return from, to, nil
	}
	if fromFlag == "" || toFlag == "" {
		return dateutil.Date{}, dateutil.Date{}, errors.New("both --from and --to are required when overriding the window")
	}

	from, err := dateutil.ParseDate(fromFlag)
	if err != nil {
		return dateutil.Date{}, dateutil.Date{}, err
	}
	to, err := dateutil.ParseDate(toFlag)
	if err != nil {
		return dateutil.Date{}, dateutil.Date{}, err
	}
	return from, to, nil
}

func archive(ctx context.Context, cfg *config.Config, userID string, dataset *domain.WeeklyDataset) error {
	db, err := config.NewDatabase(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := db.AutoMigrate(&repository.ArchivedNight{}); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return repository.NewNightRepository(db).UpsertWeek(ctx, userID, dataset)
}

func analyze(ctx context.Context, cfg *config.Config, log *zap.Logger, dataset *domain.WeeklyDataset, windowLabel string) string {
	prompt, err := langfuse.LoadPrompt(ctx, langfuse.PromptConfig{
		BaseURL:   cfg.LangfuseBaseURL,
		PublicKey: cfg.LangfusePublicKey,
		SecretKey: cfg.LangfuseSecretKey,
		Name:      cfg.PromptName,
		Label:     cfg.PromptLabel,
		SavePath:  "prompts/weekly_sleep.txt",
	}, log)
	if err != nil {
		log.Warn("prompt loading failed, using built-in prompt", zap.Error(err))
	}

	analysis, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, prompt).
		GenerateReport(ctx, dataset, windowLabel)
	if err != nil {
		// Analysis is an enrichment; the exported data is the deliverable.
		log.Error("AI analysis failed", zap.Error(err))
		return ""
	}
	return analysis
}

func deliver(ctx context.Context, cfg *config.Config, log *zap.Logger, windowLabel, analysis string, dataset *domain.WeeklyDataset, attachments []string) error {
	mailCfg := mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
		To:       cfg.MailTo,
	}
	if !mailCfg.Enabled() {
		log.Info("email transport not configured, skipping delivery")
		return nil
	}

	subject := fmt.Sprintf("Informe de sueño Zepp — %s", windowLabel)
	body := analysis
	if body == "" {
		body = fmt.Sprintf("(Sin análisis de IA)\nSe exportaron %d noches del %s al %s.",
			len(dataset.Nights()), dataset.From, dataset.To)
	}

	if err := mail.NewSender(mailCfg, log).Send(ctx, subject, body, attachments); err != nil {
		return err
	}
	return nil
}
