// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package openrouter wraps the OpenRouter chat-completions API as a typed
// translation client: prompt construction, batching, retry and response parsing.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/olegiv/polyglot/internal/model"
)

// DefaultModel matches the original plugin's default.
const DefaultModel = "anthropic/claude-3.5-sonnet"

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultTimeout = 90 * time.Second

	// maxRetries is the retry ceiling for a single provider call.
	maxRetries = 2

	// batchChunkSize is the maximum number of items sent in one batch call.
	batchChunkSize = 10
	// chunkInterval paces consecutive chunk calls to respect upstream limits.
	chunkInterval = 250 * time.Millisecond
)

// Client errors.
var (
	ErrNotConfigured   = errors.New("openrouter: api key not configured")
	ErrEmptyInput      = errors.New("openrouter: empty input")
	ErrRateLimited     = errors.New("openrouter: rate limited")
	ErrServerError     = errors.New("openrouter: server error")
	ErrParseError      = errors.New("openrouter: response is not valid JSON")
	ErrInvalidResponse = errors.New("openrouter: unexpected provider response")
)

// Options tune a translation request.
type Options struct {
	// PreserveMarkup instructs the model to leave HTML tags and attributes
	// untouched and translate only visible text.
	PreserveMarkup bool
	// PreserveNumbering keeps [n] markers intact; used by batch mode.
	PreserveNumbering bool
	// Context is a free-form tone or subject hint appended to the prompt.
	Context string
}

// Namer resolves a language code to a display name for prompts.
type Namer interface {
	DisplayName(ctx context.Context, code string) string
}

// Config holds client construction options.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client is a typed wrapper around the OpenRouter chat-completions endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	namer      Namer
	logger     *slog.Logger
}

// New creates a Client. namer may be nil, in which case the static
// common-language table resolves display names.
func New(cfg Config, namer Namer, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Every(chunkInterval), 1),
		namer:      namer,
		logger:     logger,
	}
}

// Model returns the model identifier sent with requests.
func (c *Client) Model() string { return c.model }

func (c *Client) displayName(ctx context.Context, code string) string {
	if c.namer != nil {
		return c.namer.DisplayName(ctx, code)
	}
	return model.LanguageName(code)
}

// Translate translates text from sourceLang to targetLang.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string, opts Options) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}

	messages := []chatMessage{
		{Role: "system", Content: c.buildSystemPrompt(ctx, sourceLang, targetLang, opts)},
		{Role: "user", Content: text},
	}
	return c.completion(ctx, messages)
}

// buildSystemPrompt composes the translation instruction from language display
// names and option flags.
func (c *Client) buildSystemPrompt(ctx context.Context, sourceLang, targetLang string, opts Options) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		"You are a professional translator. Translate the user's text from %s to %s. "+
			"Respond with the translation only, without explanations or quotation marks.",
		c.displayName(ctx, sourceLang), c.displayName(ctx, targetLang)))

	if opts.PreserveMarkup {
		sb.WriteString(" The text contains HTML. Preserve every tag and attribute exactly as written and translate only the visible text content. Do not add, remove or reorder tags.")
	}
	if opts.PreserveNumbering {
		sb.WriteString(" The text is a numbered list of independent items. Keep each [n] marker exactly as written and keep every item on its own line.")
	}
	if opts.Context != "" {
		sb.WriteString(" Context: " + opts.Context + ".")
	}
	return sb.String()
}

// batchLineRegex recovers "[n] translated text" lines from a batch response.
var batchLineRegex = regexp.MustCompile(`^\[(\d+)\]\s*(.+)$`)

// BatchTranslate translates a sequence of strings. Items whose translation
// cannot be recovered from the provider response come back unchanged, so the
// result always has the same length and order as the input. Chunks of more
// than batchChunkSize items are split, with paced calls per chunk; a failing
// chunk degrades to originals instead of failing the whole batch.
func (c *Client) BatchTranslate(ctx context.Context, items []string, sourceLang, targetLang string, opts Options) ([]string, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]string, 0, len(items))
	for start := 0; start < len(items); start += batchChunkSize {
		if start > 0 {
			if err := c.limiter.Wait(ctx); err != nil {
				results = append(results, items[start:]...)
				return results, err
			}
		}

		end := min(start+batchChunkSize, len(items))
		results = append(results, c.translateChunk(ctx, items[start:end], sourceLang, targetLang, opts)...)
	}
	return results, nil
}

// translateChunk translates up to batchChunkSize items in a single call.
func (c *Client) translateChunk(ctx context.Context, chunk []string, sourceLang, targetLang string, opts Options) []string {
	var sb strings.Builder
	for i, item := range chunk {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(fmt.Sprintf("[%d] %s", i+1, item))
	}

	opts.PreserveNumbering = true
	content, err := c.Translate(ctx, sb.String(), sourceLang, targetLang, opts)
	if err != nil {
		c.logger.Warn("batch chunk failed, keeping originals",
			"error", err, "items", len(chunk), "target", targetLang)
		out := make([]string, len(chunk))
		copy(out, chunk)
		return out
	}

	translated := make(map[int]string, len(chunk))
	for _, line := range strings.Split(content, "\n") {
		m := batchLineRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx < 1 || idx > len(chunk) {
			continue
		}
		translated[idx] = strings.TrimSpace(m[2])
	}

	out := make([]string, len(chunk))
	for i, original := range chunk {
		if t, ok := translated[i+1]; ok && t != "" {
			out[i] = t
		} else {
			out[i] = original
		}
	}
	return out
}

// TranslateStructured translates a map of named fields in one call. The
// provider must answer with a JSON object carrying the same keys; two recovery
// heuristics (fenced code block, first top-level brace span) run before the
// response is rejected as unparseable.
func (c *Client) TranslateStructured(ctx context.Context, fields map[string]string, sourceLang, targetLang string) (map[string]string, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if len(fields) == 0 {
		return nil, ErrEmptyInput
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshaling fields: %w", err)
	}

	system := fmt.Sprintf(
		"You are a professional translator. The user message is a JSON object whose values are text in %s. "+
			"Translate every value to %s and respond with a single JSON object carrying exactly the same keys. "+
			"Preserve any HTML tags in the values. Respond ONLY with the JSON object, no markdown fences, no extra text.",
		c.displayName(ctx, sourceLang), c.displayName(ctx, targetLang))

	content, err := c.completion(ctx, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: string(payload)},
	})
	if err != nil {
		return nil, err
	}

	result, err := decodeJSONObject(content)
	if err != nil {
		return nil, err
	}
	for key := range fields {
		if _, ok := result[key]; !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrInvalidResponse, key)
		}
	}
	return result, nil
}

// decodeJSONObject decodes a JSON object from a model response, stripping
// markdown fences and falling back to the first top-level brace span.
func decodeJSONObject(response string) (map[string]string, error) {
	cleaned := strings.TrimSpace(response)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(cleaned, "```json"), "```"))
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(cleaned, "```"), "```"))
	}

	var result map[string]string
	if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
		return result, nil
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(response[start:end+1]), &result); err == nil {
			return result, nil
		}
	}

	return nil, ErrParseError
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// completion performs one chat completion with the client's retry policy:
// immediate retry on network failure, 1s x attempt backoff on 429/5xx, no
// retry on other 4xx, at most maxRetries retries.
func (c *Client) completion(ctx context.Context, messages []chatMessage) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		content, retryable, backoff, err := c.doRequest(ctx, messages)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable || attempt == maxRetries {
			break
		}
		if backoff {
			delay := time.Duration(attempt+1) * time.Second
			c.logger.Debug("backing off before retry", "attempt", attempt+1, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", lastErr
}

// doRequest performs a single HTTP call. retryable reports whether the retry
// loop may try again; backoff reports whether it must delay first.
func (c *Client) doRequest(ctx context.Context, messages []chatMessage) (content string, retryable, backoff bool, err error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.3,
		MaxTokens:   4096,
	})
	if err != nil {
		return "", false, false, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, false, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, false, ctx.Err()
		}
		// Network-level failure: retry immediately
		return "", true, false, fmt.Errorf("http call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, false, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", true, true, fmt.Errorf("%w: %s", ErrRateLimited, errorMessage(respBody))
	case resp.StatusCode >= 500:
		return "", true, true, fmt.Errorf("%w (status %d): %s", ErrServerError, resp.StatusCode, errorMessage(respBody))
	case resp.StatusCode != http.StatusOK:
		// Other 4xx are permanent client errors
		return "", false, false, fmt.Errorf("provider rejected request (status %d): %s", resp.StatusCode, errorMessage(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", false, false, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if parsed.Error.Message != "" {
		return "", false, false, fmt.Errorf("%w: %s", ErrInvalidResponse, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", false, false, fmt.Errorf("%w: no choices returned", ErrInvalidResponse)
	}

	return parsed.Choices[0].Message.Content, false, false, nil
}

// errorMessage extracts the provider error message from a response body, or
// trims the raw body for logging.
func errorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
