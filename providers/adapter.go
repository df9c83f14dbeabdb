package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 60 * time.Second

// Adapter translates a conversation into a provider's wire request, performs
// the network call, and translates the wire response back into normalized text.
// A single adapter serves every provider; the descriptor's dialect tag selects
// the translation.
type Adapter struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAdapter creates a new Adapter. A nil httpClient gets a default client
// with a 60s timeout.
func NewAdapter(httpClient *http.Client, logger *zap.Logger) *Adapter {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		httpClient: httpClient,
		logger:     logger,
	}
}

// Complete performs one completion call against the provider described by
// desc. It returns the normalized text on success. Failures are returned as
// *ProviderError carrying the HTTP status and retry classification.
func (a *Adapter) Complete(ctx context.Context, desc Descriptor, apiKey string, messages []Message) (string, error) {
	var (
		body []byte
		err  error
	)

	switch desc.Dialect {
	case DialectGemini:
		body, err = json.Marshal(buildGeminiRequest(messages))
	default:
		body, err = json.Marshal(buildOpenAIRequest(desc.Model, messages))
	}
	if err != nil {
		return "", NewProviderError(desc.Name, 0, false, "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL(desc, apiKey), bytes.NewReader(body))
	if err != nil {
		return "", NewProviderError(desc.Name, 0, false, "failed to create request", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if desc.Dialect == DialectOpenAI {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		// Transport-level failures (DNS, refused connection, timeout) are
		// worth another attempt; the context deciding otherwise is final.
		if ctx.Err() != nil {
			return "", NewProviderError(desc.Name, 0, false, "request cancelled", ctx.Err())
		}
		return "", NewProviderError(desc.Name, 0, true, "http request failed", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", NewProviderError(desc.Name, httpResp.StatusCode, false, "failed to read response", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		retryable := httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500
		a.logger.Debug("provider returned error status",
			zap.String("provider", desc.Name),
			zap.Int("status", httpResp.StatusCode),
			zap.Bool("retryable", retryable))
		return "", NewProviderError(desc.Name, httpResp.StatusCode, retryable, string(respBody), nil)
	}

	switch desc.Dialect {
	case DialectGemini:
		return extractGeminiContent(desc.Name, respBody)
	default:
		return extractOpenAIContent(desc.Name, respBody)
	}
}

// requestURL builds the endpoint URL. Gemini-dialect providers carry the
// credential as a query parameter instead of an Authorization header.
func requestURL(desc Descriptor, apiKey string) string {
	if desc.Dialect != DialectGemini {
		return desc.URL
	}
	u, err := url.Parse(desc.URL)
	if err != nil {
		return desc.URL
	}
	q := u.Query()
	q.Set("key", apiKey)
	u.RawQuery = q.Encode()
	return u.String()
}

// OpenAI-compatible wire types

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// buildOpenAIRequest translates the conversation message-for-message with
// roles preserved as-is.
func buildOpenAIRequest(model string, messages []Message) openAIChatRequest {
	req := openAIChatRequest{
		Model:       model,
		Messages:    make([]openAIMessage, len(messages)),
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}
	for i, msg := range messages {
		req.Messages[i] = openAIMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	return req
}

func extractOpenAIContent(provider string, body []byte) (string, error) {
	var resp openAIChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", NewProviderError(provider, 0, false, "failed to unmarshal response", err)
	}
	if len(resp.Choices) == 0 {
		return "", NewProviderError(provider, 0, false, "response contained no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

// Gemini-native wire types

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// buildGeminiRequest remaps the "assistant" role to Gemini's "model" label
// and wraps each message's text in the nested content-part structure.
// Message order is preserved.
func buildGeminiRequest(messages []Message) geminiRequest {
	req := geminiRequest{
		Contents: make([]geminiContent, len(messages)),
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: defaultMaxTokens,
			Temperature:     defaultTemperature,
		},
	}
	for i, msg := range messages {
		role := string(msg.Role)
		if msg.Role == RoleAssistant {
			role = "model"
		}
		req.Contents[i] = geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		}
	}
	return req
}

func extractGeminiContent(provider string, body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", NewProviderError(provider, 0, false, "failed to unmarshal response", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", NewProviderError(provider, 0, false, "response contained no candidates", nil)
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
