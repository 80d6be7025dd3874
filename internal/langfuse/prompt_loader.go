package langfuse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PromptConfig describes how to load the analysis prompt from Langfuse, with
// an optional local fallback file.
type PromptConfig struct {
	BaseURL   string
	PublicKey string
	SecretKey string

	Name     string
	Label    string
	SavePath string
}

var errDisabled = errors.New("langfuse integration disabled")

// LoadPrompt retrieves the analysis system prompt. Preference order: the
// managed Langfuse prompt, then the locally cached copy. An empty return
// with a nil error means there is no managed prompt and the caller should
// use its compiled-in default.
func LoadPrompt(ctx context.Context, cfg PromptConfig, logger *zap.Logger) (string, error) {
	if cfg.Name == "" {
		return readPromptFile(cfg.SavePath)
	}

	prompt, err := fetchPrompt(ctx, cfg)
	if err == nil {
		if cfg.SavePath != "" {
			if err := savePromptFile(cfg.SavePath, prompt); err != nil {
				logger.Warn("failed to cache prompt locally", zap.Error(err))
			}
		}
		return prompt, nil
	}
	if !errors.Is(err, errDisabled) {
		logger.Warn("langfuse prompt fetch failed, trying local copy", zap.Error(err))
	}

	return readPromptFile(cfg.SavePath)
}

func fetchPrompt(ctx context.Context, cfg PromptConfig) (string, error) {
	if cfg.BaseURL == "" || cfg.PublicKey == "" || cfg.SecretKey == "" {
		return "", errDisabled
	}

	parsed, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid LANGFUSE_BASE_URL: %w", err)
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + "/api/public/v2/prompts/" + url.PathEscape(cfg.Name)
	if cfg.Label != "" {
		query := parsed.Query()
		query.Set("label", cfg.Label)
		parsed.RawQuery = query.Encode()
	}

	requestCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create prompt request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(cfg.PublicKey, cfg.SecretKey)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("prompt request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("prompt request returned %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode prompt response: %w", err)
	}
	if payload.Prompt == "" {
		return "", errors.New("prompt response had no prompt text")
	}
	return payload.Prompt, nil
}

func readPromptFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read prompt file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func savePromptFile(path, prompt string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(prompt+"\n"), 0o644)
}
