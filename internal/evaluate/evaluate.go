// Package evaluate decides whether a results log fails the pipeline.
package evaluate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spboyer/mdspell/internal/models"
	"github.com/spboyer/mdspell/internal/results"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// File reads and evaluates the results log at path.
func File(path string) (*models.RunOutcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results log: %w", err)
	}

	outcome := Evaluate(data)
	outcome.LogPath = path
	return outcome, nil
}

// FileOrFailSafe evaluates the log at path like [File]. When the log cannot be
// read it returns a failing outcome carrying the error instead.
func FileOrFailSafe(path string) *models.RunOutcome {
	outcome, err := File(path)
	if err != nil {
		slog.Error("Unable to evaluate results log, failing", "path", path, "error", err)
		return &models.RunOutcome{
			LogPath:    path,
			Timestamp:  time.Now(),
			ShouldFail: true,
			EvalError:  err.Error(),
		}
	}
	return outcome
}

// Evaluate splits a results log into its per-file sections and evaluates each
// one. Malformed sections are recorded and skipped.
func Evaluate(data []byte) *models.RunOutcome {
	outcome := &models.RunOutcome{
		Timestamp: time.Now(),
	}

	for _, sec := range results.Split(string(data)) {
		fo := Section(sec)
		if fo.Status == models.StatusMalformed {
			slog.Warn("Skipping unparseable review", "file", fo.File, "reason", fo.Message)
		}
		if fo.Blocking {
			outcome.ShouldFail = true
		}
		outcome.Files = append(outcome.Files, fo)
	}

	return outcome
}

// Section evaluates one file's review reply.
func Section(sec results.Section) models.FileOutcome {
	fo := models.FileOutcome{File: sec.File}

	payload, ok := extractFence([]byte(sec.Body))
	if !ok {
		fo.Status = models.StatusMalformed
		fo.Message = "no fenced code block"
		return fo
	}

	if strings.TrimSpace(payload) == "" {
		fo.Status = models.StatusMalformed
		fo.Message = "empty fenced code block"
		return fo
	}

	var v any
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		fo.Status = models.StatusMalformed
		fo.Message = fmt.Sprintf("invalid JSON: %v", err)
		return fo
	}

	switch val := v.(type) {
	case map[string]any:
		msg, ok := val["message"]
		if !ok {
			fo.Status = models.StatusMalformed
			fo.Message = "object without a message"
			return fo
		}
		fo.Status = models.StatusClean
		fo.Message = fmt.Sprint(msg)
	case []any:
		fo.Status = models.StatusClean
		for i, entry := range val {
			raw, ok := entry.(map[string]any)
			if !ok {
				slog.Warn("Skipping issue that is not an object", "file", sec.File, "index", i, "type", fmt.Sprintf("%T", entry))
				continue
			}

			rec, err := decodeIssue(raw)
			if err != nil {
				slog.Warn("Issue only partly readable", "file", sec.File, "index", i, "error", err)
			}

			fo.Issues = append(fo.Issues, rec)
			if !fo.Blocking && rec.Category.Blocking() {
				fo.Blocking = true
			}
		}
		if len(fo.Issues) > 0 {
			fo.Status = models.StatusIssues
		}
	default:
		fo.Status = models.StatusMalformed
		fo.Message = fmt.Sprintf("unexpected JSON %T", v)
	}

	return fo
}

// decodeIssue decodes one issue entry. When a field cannot be decoded the
// returned record still carries the text fields and category read directly
// from raw, with a zero line number, alongside the error.
func decodeIssue(raw map[string]any) (models.IssueRecord, error) {
	var rec models.IssueRecord

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rec,
		WeaklyTypedInput: true,
	})
	if err == nil {
		err = dec.Decode(raw)
	}

	if err != nil {
		rec = models.IssueRecord{
			OriginalText:  stringField(raw, "original_text"),
			SuggestedText: stringField(raw, "suggested_text"),
			Category:      models.Category(stringField(raw, "category")),
		}
	}

	rec.Category = models.NormalizeCategory(string(rec.Category))
	return rec, err
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

// extractFence returns the contents of the first fenced code block tagged
// json, or of the first fenced code block when none is tagged.
func extractFence(source []byte) (string, bool) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var first, tagged *ast.FencedCodeBlock

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		if first == nil {
			first = fence
		}

		if strings.EqualFold(string(fence.Language(source)), "json") {
			tagged = fence
			return ast.WalkStop, nil
		}

		return ast.WalkSkipChildren, nil
	})

	fence := tagged
	if fence == nil {
		fence = first
	}

	if fence == nil {
		return "", false
	}

	var buf bytes.Buffer
	lines := fence.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}

	return buf.String(), true
}
