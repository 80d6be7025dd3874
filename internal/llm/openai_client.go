package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blaisecz/zepp-sleep-report/internal/domain"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var (
	// ErrOpenAIUnavailable indicates the OpenAI service is not configured.
	ErrOpenAIUnavailable = errors.New("OpenAI service unavailable")
	// ErrOpenAIRequest indicates an error during the OpenAI API request.
	ErrOpenAIRequest = errors.New("OpenAI request failed")
	// ErrOpenAIResponse indicates an empty or unusable OpenAI response.
	ErrOpenAIResponse = errors.New("unusable OpenAI response")
)

// DefaultSystemPrompt drives the weekly analysis. Overridable at runtime via
// the Langfuse prompt loader; this is the committed fallback.
const DefaultSystemPrompt = `Eres un experto en sueño analítico. Analiza el sueño semanal en la lista de registros con las claves: ` +
	`date, deepSleepTime, shallowSleepTime, wakeTime (tiempo despierto durante la noche), start (comienzo del sueño), stop (final del sueño), REMTime, naps (siestas). ` +
	`Los días sin datos aparecen sin registro nocturno; distingue entre "sin datos" y "durmió cero minutos". ` +
	`Devuelve un informe semanal breve en español con: ` +
	`1) métricas clave y lo que significan: lo bueno y a mejorar, ` +
	`2) 2 puntos fuertes y 2 a mejorar. Sé preciso, accionable, específico, usa cifras. ` +
	`Da recomendaciones específicas para este usuario, no genéricas: qué días lo hizo mejor y por qué, y qué días mejorar y cómo. Menciona el día de la semana (lunes, martes, etc.)`

// ReportLLM generates the weekly analysis text from the structured dataset.
type ReportLLM interface {
	GenerateReport(ctx context.Context, dataset *domain.WeeklyDataset, windowLabel string) (string, error)
}

// OpenAIClient implements ReportLLM against the chat completions API.
type OpenAIClient struct {
	client       openai.Client
	model        string
	systemPrompt string
}

// NewOpenAIClient creates the client. Returns nil when apiKey is empty; a
// nil client degrades to ErrOpenAIUnavailable so the run can continue
// without analysis.
func NewOpenAIClient(apiKey, model, systemPrompt string) *OpenAIClient {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	return &OpenAIClient{
		client:       openai.NewClient(option.WithAPIKey(apiKey)),
		model:        model,
		systemPrompt: systemPrompt,
	}
}

// GenerateReport asks the model for the weekly report. The dataset is handed
// over as structured JSON; formatting decisions belong to the model prompt,
// not to this client.
func (c *OpenAIClient) GenerateReport(ctx context.Context, dataset *domain.WeeklyDataset, windowLabel string) (string, error) {
	if c == nil {
		return "", ErrOpenAIUnavailable
	}

	payload := map[string]any{
		"ventana": windowLabel,
		"rows":    dataset.Days,
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: serialize dataset: %v", ErrOpenAIRequest, err)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.systemPrompt),
			openai.UserMessage(string(payloadJSON)),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOpenAIRequest, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrOpenAIResponse)
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrOpenAIResponse)
	}

	return content, nil
}
