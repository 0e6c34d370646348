// Package review sends numbered file contents to a language-model service
// for spelling and grammar review and returns the service's raw reply.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spboyer/mdspell/internal/projectconfig"
)

// Reviewer is the interface for review engines
type Reviewer interface {
	// Review sends one file's numbered lines to the service and returns the
	// raw reply text.
	Review(ctx context.Context, req *Request) (string, error)

	// Close releases any resources held by the engine.
	Close() error
}

// Request is a single file's review request
type Request struct {
	// FileName labels the request in logs. It is not sent to the service.
	FileName string

	// Lines are the file's lines as produced by lines.Number.
	Lines []string
}

var (
	// ErrRateLimited is returned when the service answers 429.
	ErrRateLimited = errors.New("rate limited by review service")

	// ErrRejected is returned for 4xx answers other than 429, typically a bad
	// credential or an unknown model.
	ErrRejected = errors.New("request rejected by review service")

	// ErrEmptyResponse is returned when the service answered without any text.
	ErrEmptyResponse = errors.New("review service returned no content")

	// ErrTruncated is returned when the reply was cut off at the output limit.
	ErrTruncated = errors.New("review reply truncated at max_tokens")
)

// New creates the reviewer selected by cfg.Engine. apiKey is the resolved
// credential; it is ignored by engines that do not need one.
func New(cfg *projectconfig.ReviewConfig, apiKey string) (Reviewer, error) {
	switch cfg.Engine {
	case projectconfig.EngineOpenAI:
		r, err := NewOpenAIReviewer(OpenAIOptions{
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			APIKey:    apiKey,
			MaxTokens: cfg.MaxTokens,
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	case projectconfig.EngineCopilot:
		return NewCopilotReviewerBuilder(cfg.Model, &CopilotReviewerBuilderOptions{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		}).Build(), nil
	case projectconfig.EngineMock:
		return NewMockReviewer(), nil
	default:
		return nil, fmt.Errorf("'%s' is not a valid review engine", cfg.Engine)
	}
}
