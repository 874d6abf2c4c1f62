package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
	Fallback     Enhancer
	OnFallback   func(reason string, err error)
	OnWarning    func(reason, detail string)
}

type OpenAIEnhancer struct {
	apiKey       string
	model        string
	baseURL      string
	organization string
	client       *http.Client
	fallback     Enhancer
	onFallback   func(reason string, err error)
}

const openAIDefaultTimeout = 15 * time.Second

const defaultOpenAIModel = "gpt-4o-mini"

var openAIModelCanonical = map[string]string{
	"gpt-3.5-turbo": "gpt-3.5-turbo",
	"gpt-4o-mini":   "gpt-4o-mini",
	"gpt-4o":        "gpt-4o",
}

var openAIModelAliases = map[string]string{
	"gpt-3.5":                "gpt-3.5-turbo",
	"gpt3.5":                 "gpt-3.5-turbo",
	"gpt-35-turbo":           "gpt-3.5-turbo",
	"gpt4o-mini":             "gpt-4o-mini",
	"gpt4omini":              "gpt-4o-mini",
	"gpt-4o-mini-2024-07-18": "gpt-4o-mini",
	"gpt4o":                  "gpt-4o",
}

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
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

func NewOpenAIEnhancer(opts OpenAIOptions) (*OpenAIEnhancer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	modelInput := strings.TrimSpace(opts.Model)
	normalizedModel, normalizationReason := normalizeOpenAIModel(modelInput)
	if normalizationReason != "" && opts.OnWarning != nil {
		detail := fmt.Sprintf("requested=%s resolved=%s", coalesce(modelInput, defaultOpenAIModel), normalizedModel)
		opts.OnWarning("model_"+normalizationReason, detail)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewStaticEnhancer()
	}
	return &OpenAIEnhancer{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        normalizedModel,
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		client:       client,
		fallback:     fallback,
		onFallback:   opts.OnFallback,
	}, nil
}

// upstreamError tags a failed completion with a short machine reason.
type upstreamError struct {
	reason string
	err    error
}

func (e *upstreamError) Error() string { return e.reason + ": " + e.err.Error() }

func (e *upstreamError) Unwrap() error { return e.err }

func failure(reason string, err error) error { return &upstreamError{reason: reason, err: err} }

// Enhance asks the chat completion API to rewrite prompt. Any failure other
// than context cancellation falls back to the configured fallback enhancer.
func (o *OpenAIEnhancer) Enhance(ctx context.Context, prompt string) (*Result, error) {
	text, err := o.complete(ctx, []openAIMessage{
		{Role: "system", Content: enhanceSystemPrompt},
		{Role: "user", Content: strings.TrimSpace(prompt)},
	})
	if err == nil {
		return &Result{Prompt: text, Provider: openAIProviderName}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	var up *upstreamError
	if !errors.As(err, &up) {
		up = &upstreamError{reason: "unknown", err: err}
	}
	return o.useFallback(ctx, prompt, up.reason, up.err)
}

// complete runs one chat completion and returns the cleaned first choice.
func (o *OpenAIEnhancer) complete(ctx context.Context, messages []openAIMessage) (string, error) {
	body, err := json.Marshal(openAIChatRequest{
		Model:       o.model,
		Temperature: 0.7,
		MaxTokens:   200,
		Messages:    messages,
	})
	if err != nil {
		return "", failure("encode_request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", failure("build_request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	if o.organization != "" {
		req.Header.Set("OpenAI-Organization", o.organization)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", failure("http_request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		msg := coalesce(apiErr.Error.Message, http.StatusText(resp.StatusCode))
		return "", failure(fmt.Sprintf("http_%d", resp.StatusCode), fmt.Errorf("openai status %d: %s", resp.StatusCode, msg))
	}
	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", failure("decode_response", err)
	}
	if len(out.Choices) == 0 {
		return "", failure("empty_choices", errors.New("no choices"))
	}
	text := cleanModelText(out.Choices[0].Message.Content)
	if text == "" {
		return "", failure("empty_response", errors.New("empty response"))
	}
	return text, nil
}

func (o *OpenAIEnhancer) useFallback(ctx context.Context, prompt, reason string, fallbackErr error) (*Result, error) {
	if o.onFallback != nil {
		o.onFallback(reason, fallbackErr)
	}
	res, err := o.fallback.Enhance(ctx, prompt)
	if res != nil {
		if res.Provider == "" {
			res.Provider = staticProviderName
		}
		res.FallbackReason = reason
	}
	return res, err
}

var _ Enhancer = (*OpenAIEnhancer)(nil)

func normalizeOpenAIModel(name string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return defaultOpenAIModel, ""
	}
	normalized := strings.ToLower(trimmed)
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	if canonical, ok := openAIModelCanonical[normalized]; ok {
		return canonical, ""
	}
	if alias, ok := openAIModelAliases[normalized]; ok {
		return alias, "alias"
	}
	return defaultOpenAIModel, "defaulted"
}
