package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OpenAIOptions configures an [OpenAIReviewer].
type OpenAIOptions struct {
	// BaseURL of an OpenAI-compatible API, e.g. https://api.openai.com/v1.
	BaseURL   string
	Model     string
	APIKey    string
	MaxTokens int
	Timeout   time.Duration

	// Doer overrides the HTTP transport, for tests.
	Doer func(*http.Request) (*http.Response, error)
}

// OpenAIReviewer calls the chat completions endpoint of an OpenAI-compatible
// service.
type OpenAIReviewer struct {
	url       string
	apiKey    string
	model     string
	maxTokens int
	do        func(*http.Request) (*http.Response, error)
}

// NewOpenAIReviewer validates opts and returns a reviewer.
func NewOpenAIReviewer(opts OpenAIOptions) (*OpenAIReviewer, error) {
	if opts.APIKey == "" {
		return nil, errors.New("openai: missing api key")
	}

	if opts.Model == "" {
		return nil, errors.New("openai: missing model")
	}

	if opts.BaseURL == "" {
		return nil, errors.New("openai: missing base url")
	}

	do := opts.Doer
	if do == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		do = (&http.Client{Timeout: timeout}).Do
	}

	return &OpenAIReviewer{
		url:       strings.TrimRight(opts.BaseURL, "/") + "/chat/completions",
		apiKey:    opts.APIKey,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		do:        do,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// UpstreamError is returned for 5xx and 408 answers.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("openai upstream %d: %s", e.Status, e.Message)
}

// Review implements [Reviewer].
func (r *OpenAIReviewer) Review(ctx context.Context, req *Request) (string, error) {
	if req == nil {
		return "", errors.New("nil req was passed to OpenAIReviewer.Review")
	}

	prompt := BuildPrompt(req.Lines)

	body, err := json.Marshal(&chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		MaxTokens: r.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("calling %s: %w", r.url, err)
	}
	defer resp.Body.Close()

	slog.Debug("Review service answered", "file", req.FileName, "status", resp.StatusCode, "durationMs", time.Since(start).Milliseconds())

	if resp.StatusCode/100 != 2 {
		// a little of the body helps diagnose auth and model errors
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		msg := strings.TrimSpace(string(slurp))

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return "", fmt.Errorf("%w: %s", ErrRateLimited, msg)
		case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode/100 == 5:
			return "", &UpstreamError{Status: resp.StatusCode, Message: msg}
		default:
			return "", fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, msg)
		}
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	if cr.Choices[0].FinishReason == "length" {
		return "", fmt.Errorf("%w (%d)", ErrTruncated, r.maxTokens)
	}

	return cr.Choices[0].Message.Content, nil
}

// Close implements [Reviewer].
func (r *OpenAIReviewer) Close() error {
	return nil
}
