// Package llm holds the two external model collaborators: comment
// classification into the motive taxonomy and the narrative report summary.
// Any failure here is recoverable by the caller; classification degrades to
// keywords and the summary degrades to nothing.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"rotabot/internal/config"
	"rotabot/internal/domain"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultOpenAIModel = "gpt-4o-mini"

type Usage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

func (u Usage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

// ClassifyComments asks the configured model for exactly one taxonomy
// category per comment, in order. Corrections are included as few-shot
// examples. A response of the wrong length is an error; the caller is
// expected to fall back to the keyword classifier.
func ClassifyComments(cfg config.Config, comments []string, categories []string, corrections domain.CorrectionsMap) ([]string, Usage, error) {
	if len(comments) == 0 {
		return nil, Usage{}, nil
	}

	systemPrompt, userPrompt := buildClassifyPrompts(cfg, comments, categories, corrections)
	responseText, usage, err := complete(cfg, systemPrompt, userPrompt)
	if err != nil {
		return nil, usage, err
	}

	parsed, err := parseClassifyResponse(responseText)
	if err != nil {
		return nil, usage, err
	}
	if len(parsed) != len(comments) {
		return nil, usage, fmt.Errorf("classification count mismatch: got %d categories for %d comments", len(parsed), len(comments))
	}
	return parsed, usage, nil
}

func buildClassifyPrompts(cfg config.Config, comments []string, categories []string, corrections domain.CorrectionsMap) (string, string) {
	var categoryLines strings.Builder
	for _, c := range categories {
		categoryLines.WriteString("- " + c + "\n")
	}

	systemPrompt := fmt.Sprintf(`Eres un analista experto en Recursos Humanos. Clasifica cada comentario de salida de empleados en exactamente una de las categorías listadas (usa el nombre exacto). Devuelve una categoría para CADA comentario, en el mismo orden, aunque el comentario sea ambiguo; si menciona varias razones, usa la primera o la más clara.

Categorías disponibles:
%s
Responde solo con JSON (sin markdown):
{"categorized_comments": ["categoria1", "categoria2", ...]}`, categoryLines.String())

	correctionsBlock := ""
	if len(corrections) > 0 {
		keys := make([]string, 0, len(corrections))
		for k := range corrections {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		limit := cfg.LLMExampleCount
		if limit <= 0 || limit > len(keys) {
			limit = len(keys)
		}
		var cb strings.Builder
		cb.WriteString("Ejemplos de clasificaciones corregidas por un humano (úsalos como guía):\n")
		for _, k := range keys[:limit] {
			comment := k
			if len(comment) > cfg.LLMExampleMaxLen && cfg.LLMExampleMaxLen > 0 {
				comment = comment[:cfg.LLMExampleMaxLen] + "..."
			}
			cb.WriteString(fmt.Sprintf("- %q -> %q\n", comment, corrections[k]))
		}
		cb.WriteString("\n")
		correctionsBlock = cb.String()
	}

	commentsJSON, _ := json.Marshal(comments)
	userPrompt := fmt.Sprintf("%sClasifica los siguientes %d comentarios:\n%s", correctionsBlock, len(comments), commentsJSON)
	return systemPrompt, userPrompt
}

type classifyResponse struct {
	CategorizedComments []string `json:"categorized_comments"`
}

func parseClassifyResponse(responseText string) ([]string, error) {
	responseText = stripFences(responseText)
	var parsed classifyResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		return nil, fmt.Errorf("parsing classification response: %w (response: %s)", err, truncateForLog(responseText))
	}
	if parsed.CategorizedComments == nil {
		return nil, fmt.Errorf("classification response missing categorized_comments: %s", truncateForLog(responseText))
	}
	return parsed.CategorizedComments, nil
}

// GenerateSummary asks the model for the narrative diagnosis and action plan
// from a plain key-value digest of the computed report.
func GenerateSummary(cfg config.Config, digest string) (*domain.Summary, Usage, error) {
	systemPrompt := `Actúa como un Director de Recursos Humanos y consultor de negocios, especializado en la industria de manufactura bajo un modelo de shelter. Tu análisis debe ser cuantitativo, directo y orientado a la acción. Traduce los datos en insights de negocio y recomienda soluciones prácticas y de bajo costo para el equipo de RH en planta. Evita frases genéricas; sé directo y cuantitativo.`

	userPrompt := fmt.Sprintf(`Basado ESTRICTAMENTE en los siguientes datos, genera un diagnóstico y un plan de acción sugerido.

DATOS:
%s

INSTRUCCIONES DE SALIDA:
1. "diagnostico": un párrafo corto seguido de viñetas ('*') con los hallazgos más importantes; conecta el dónde (Pareto), el porqué (motivos) y el cuándo (supervivencia), e incluye insights predictivos de retención.
2. "plan_de_accion": 3 a 4 acciones concretas y priorizadas; para cada una detalla accion (QUÉ), porque (el dato que la justifica) y como (pasos prácticos).

Responde solo con JSON (sin markdown):
{"diagnostico": "...", "plan_de_accion": [{"accion": "...", "porque": "...", "como": "..."}]}`, digest)

	responseText, usage, err := complete(cfg, systemPrompt, userPrompt)
	if err != nil {
		return nil, usage, err
	}
	summary, err := parseSummaryResponse(responseText)
	return summary, usage, err
}

type summaryResponse struct {
	Diagnostico  string              `json:"diagnostico"`
	PlanDeAccion []domain.ActionItem `json:"plan_de_accion"`
}

func parseSummaryResponse(responseText string) (*domain.Summary, error) {
	responseText = stripFences(responseText)
	var parsed summaryResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		return nil, fmt.Errorf("parsing summary response: %w (response: %s)", err, truncateForLog(responseText))
	}
	if parsed.Diagnostico == "" || len(parsed.PlanDeAccion) == 0 {
		return nil, fmt.Errorf("summary response missing diagnostico or plan_de_accion")
	}
	return &domain.Summary{Summary: parsed.Diagnostico, Actions: parsed.PlanDeAccion}, nil
}

func complete(cfg config.Config, systemPrompt, userPrompt string) (string, Usage, error) {
	switch cfg.LLMProvider {
	case "openai":
		model := cfg.LLMModel
		if model == "" {
			model = defaultOpenAIModel
		}
		log.Printf("llm request provider=openai model=%s", model)
		return callOpenAI(cfg.OpenAIAPIKey, model, systemPrompt, userPrompt)
	default:
		model := cfg.LLMModel
		if model == "" {
			model = defaultAnthropicModel
		}
		log.Printf("llm request provider=anthropic model=%s", model)
		return callAnthropic(cfg.AnthropicAPIKey, model, systemPrompt, userPrompt)
	}
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncateForLog(s string) string {
	if len(s) > 512 {
		return s[:512] + fmt.Sprintf("... [truncated, total_length=%d]", len(s))
	}
	return s
}

// --- Anthropic ---

func callAnthropic(apiKey, model, systemPrompt, userPrompt string) (string, Usage, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", Usage{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := Usage{
		InputTokens:              message.Usage.InputTokens,
		OutputTokens:             message.Usage.OutputTokens,
		CacheCreationInputTokens: message.Usage.CacheCreationInputTokens,
		CacheReadInputTokens:     message.Usage.CacheReadInputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d", len(block.Text), usage.InputTokens, usage.OutputTokens)
			return block.Text, usage, nil
		}
	}
	return "", usage, fmt.Errorf("no text content in Anthropic response")
}

// --- OpenAI ---

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func callOpenAI(apiKey, model, systemPrompt, userPrompt string) (string, Usage, error) {
	reqBody := openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", Usage{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequest("POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", Usage{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("llm openai error: %v", err)
		return "", Usage{}, fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Usage{}, fmt.Errorf("reading response: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return "", Usage{}, fmt.Errorf("parsing OpenAI response: %w", err)
	}

	if openAIResp.Error != nil {
		log.Printf("llm openai api error: %s", openAIResp.Error.Message)
		return "", Usage{}, fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}

	if len(openAIResp.Choices) == 0 {
		return "", Usage{}, fmt.Errorf("no choices in OpenAI response")
	}
	usage := Usage{}
	if openAIResp.Usage != nil {
		usage.InputTokens = openAIResp.Usage.PromptTokens
		usage.OutputTokens = openAIResp.Usage.CompletionTokens
	}

	log.Printf("llm openai response size=%d tokens_in=%d tokens_out=%d", len(openAIResp.Choices[0].Message.Content), usage.InputTokens, usage.OutputTokens)
	return openAIResp.Choices[0].Message.Content, usage, nil
}
