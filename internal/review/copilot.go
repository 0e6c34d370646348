package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	copilot "github.com/github/copilot-sdk/go"
	"github.com/spboyer/mdspell/internal/utils"
)

// CopilotReviewer reviews files through the GitHub Copilot SDK. Each file gets
// its own session so earlier files never leak into a later review.
type CopilotReviewer struct {
	modelID string
	timeout time.Duration

	client copilotClient

	startOnce sync.Once
	startErr  error
}

// CopilotReviewerBuilder builds a CopilotReviewer with options
type CopilotReviewerBuilder struct {
	reviewer *CopilotReviewer
}

type CopilotReviewerBuilderOptions struct {
	// Timeout bounds a single file's review. Zero means no extra bound.
	Timeout time.Duration

	NewCopilotClient func(clientOptions *copilot.ClientOptions) copilotClient
}

// NewCopilotReviewerBuilder creates a builder for CopilotReviewer
//   - modelID - can be blank, which means the copilot CLI will choose its own
//     fallback model.
func NewCopilotReviewerBuilder(modelID string, options *CopilotReviewerBuilderOptions) *CopilotReviewerBuilder {
	copilotOptions := &copilot.ClientOptions{
		LogLevel:  "error",
		AutoStart: copilot.Bool(false),
		// the credential comes from GITHUB_TOKEN, which the CLI inherits
		UseLoggedInUser: copilot.Bool(false),
	}

	reviewer := &CopilotReviewer{
		modelID: modelID,
	}

	if options == nil || options.NewCopilotClient == nil {
		reviewer.client = newCopilotClient(copilotOptions)
	} else {
		reviewer.client = options.NewCopilotClient(copilotOptions)
	}

	if options != nil {
		reviewer.timeout = options.Timeout
	}

	return &CopilotReviewerBuilder{reviewer: reviewer}
}

func (b *CopilotReviewerBuilder) Build() *CopilotReviewer {
	return b.reviewer
}

// Review implements [Reviewer].
func (r *CopilotReviewer) Review(ctx context.Context, req *Request) (string, error) {
	if req == nil {
		return "", errors.New("nil req was passed to CopilotReviewer.Review")
	}

	r.startOnce.Do(func() {
		r.startErr = r.client.Start(ctx)
	})

	if r.startErr != nil {
		return "", fmt.Errorf("copilot failed to start: %w", r.startErr)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	session, err := r.client.CreateSession(ctx, &copilot.SessionConfig{
		Model:               r.modelID,
		OnPermissionRequest: denyAllTools,
	})

	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	unsubscribe := session.On(utils.SessionToSlog)
	defer unsubscribe()

	resp, err := session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: BuildPrompt(req.Lines).Flatten(),
	})

	if err != nil {
		return "", fmt.Errorf("failed to send prompt for %s: %w", req.FileName, err)
	}

	if resp == nil || resp.Data.Content == nil || strings.TrimSpace(*resp.Data.Content) == "" {
		return "", ErrEmptyResponse
	}

	return *resp.Data.Content, nil
}

// Close implements [Reviewer].
func (r *CopilotReviewer) Close() error {
	if err := r.client.Stop(); err != nil {
		// Log but continue cleanup
		slog.Info("failed to stop client", "error", err)
	}

	return nil
}

// denyAllTools refuses every tool call; a review is text in, text out.
func denyAllTools(request copilot.PermissionRequest, invocation copilot.PermissionInvocation) (copilot.PermissionRequestResult, error) {
	return copilot.PermissionRequestResult{Kind: "denied-by-rules"}, nil
}
