package review

import (
	"context"
	"fmt"
)

// MockCleanResponse is what [MockReviewer] answers for every file.
const MockCleanResponse = "```json\n{\"message\": \"No spelling or grammar issues found! 🎉\"}\n```"

// MockReviewer is a simple mock implementation for dry runs and testing. It
// never touches the network and reports every file as clean.
type MockReviewer struct {
	calls int
}

// NewMockReviewer creates a new mock reviewer
func NewMockReviewer() *MockReviewer {
	return &MockReviewer{}
}

// Review implements [Reviewer].
func (m *MockReviewer) Review(ctx context.Context, req *Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if req == nil {
		return "", fmt.Errorf("nil req was passed to MockReviewer.Review")
	}

	m.calls++
	return MockCleanResponse, nil
}

// Calls returns how many reviews were requested.
func (m *MockReviewer) Calls() int {
	return m.calls
}

// Close implements [Reviewer].
func (m *MockReviewer) Close() error {
	return nil
}
