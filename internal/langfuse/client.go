// Package langfuse talks to the Langfuse HTTP API: managed prompts for the
// weekly analysis, and one ingested trace per report run so generations can
// be reviewed later. When unconfigured everything degrades to a no-op.
package langfuse

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds Langfuse client configuration.
type Config struct {
	BaseURL     string
	PublicKey   string
	SecretKey   string
	Environment string
}

// RunTrace describes one report run for ingestion.
type RunTrace struct {
	RunID       string   // report run id; becomes the trace id
	WindowLabel string   // e.g. "2024-01-01..2024-01-07"
	Input       any      // serializable run input (window, user)
	Output      any      // serializable run output (dataset stats, analysis)
	Tags        []string
}

// Client ingests report-run traces.
type Client struct {
	cfg        Config
	enabled    bool
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Client. Missing configuration yields a disabled
// client whose methods are safe no-ops.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	enabled := cfg.BaseURL != "" && cfg.PublicKey != "" && cfg.SecretKey != ""
	if !enabled {
		logger.Debug("langfuse ingestion disabled")
	}

	return &Client{
		cfg:     cfg,
		enabled: enabled,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// IsEnabled reports whether ingestion is configured.
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// TraceRun ingests one trace for a finished report run. Failures are logged
// and swallowed; observability must never fail the report.
func (c *Client) TraceRun(ctx context.Context, run RunTrace) {
	if !c.enabled {
		return
	}

	traceID := run.RunID
	if traceID == "" {
		traceID = uuid.NewString()
	}

	event := map[string]any{
		"id":        uuid.NewString(),
		"type":      "trace-create",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"body": map[string]any{
			"id":          traceID,
			"name":        "weekly-sleep-report",
			"input":       run.Input,
			"output":      run.Output,
			"tags":        run.Tags,
			"environment": c.cfg.Environment,
			"metadata": map[string]any{
				"window": run.WindowLabel,
			},
		},
	}
	payload, err := json.Marshal(map[string]any{"batch": []any{event}})
	if err != nil {
		c.logger.Warn("langfuse trace marshal failed", zap.Error(err))
		return
	}

	requestCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost,
		c.cfg.BaseURL+"/api/public/ingestion", bytes.NewReader(payload))
	if err != nil {
		c.logger.Warn("langfuse trace request build failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.PublicKey, c.cfg.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("langfuse trace ingestion failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.logger.Warn("langfuse trace ingestion rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("trace_id", traceID),
		)
		return
	}
	c.logger.Debug("langfuse trace ingested", zap.String("trace_id", traceID))
}
