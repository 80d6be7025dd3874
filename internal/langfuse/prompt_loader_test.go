package langfuse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestLoadPromptFromLangfuse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/public/v2/prompts/weekly-sleep" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("label") != "production" {
			t.Fatalf("label not forwarded: %q", r.URL.RawQuery)
		}
		if user, _, ok := r.BasicAuth(); !ok || user != "pk" {
			t.Fatal("basic auth missing")
		}
		json.NewEncoder(w).Encode(map[string]string{"prompt": "managed prompt text"})
	}))
	t.Cleanup(server.Close)

	savePath := filepath.Join(t.TempDir(), "prompt.txt")
	prompt, err := LoadPrompt(context.Background(), PromptConfig{
		BaseURL:   server.URL,
		PublicKey: "pk",
		SecretKey: "sk",
		Name:      "weekly-sleep",
		Label:     "production",
		SavePath:  savePath,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("LoadPrompt: %v", err)
	}
	if prompt != "managed prompt text" {
		t.Fatalf("prompt = %q", prompt)
	}

	// The fetched prompt is cached locally and served when Langfuse is down.
	cached, err := LoadPrompt(context.Background(), PromptConfig{
		BaseURL:   "http://127.0.0.1:1", // unreachable
		PublicKey: "pk",
		SecretKey: "sk",
		Name:      "weekly-sleep",
		SavePath:  savePath,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("LoadPrompt fallback: %v", err)
	}
	if cached != "managed prompt text" {
		t.Fatalf("cached prompt = %q", cached)
	}
}

func TestLoadPromptUnconfigured(t *testing.T) {
	// No prompt name and no fallback file: empty prompt, caller uses its
	// compiled-in default.
	prompt, err := LoadPrompt(context.Background(), PromptConfig{}, zap.NewNop())
	if err != nil {
		t.Fatalf("LoadPrompt: %v", err)
	}
	if prompt != "" {
		t.Fatalf("prompt = %q, want empty", prompt)
	}
}
