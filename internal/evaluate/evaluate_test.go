package evaluate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spboyer/mdspell/internal/models"
	"github.com/spboyer/mdspell/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanReply = "```json\n{\"message\": \"No spelling or grammar issues found! 🎉\"}\n```"

func issueReply(category string) string {
	return "Here is what I found:\n\n```json\n[\n" +
		`  {"original_text": "Teh", "suggested_text": "The", "line_number": 3, "category": "` + category + `"}` +
		"\n]\n```\n"
}

func buildLog(sections ...[2]string) []byte {
	var log string
	for _, s := range sections {
		log += results.FormatSection(s[0], s[1])
	}
	return []byte(log)
}

func TestEvaluate_OnlyClean(t *testing.T) {
	outcome := Evaluate(buildLog(
		[2]string{"a.md", cleanReply},
		[2]string{"b.md", cleanReply},
	))

	assert.False(t, outcome.ShouldFail)
	require.Len(t, outcome.Files, 2)
	for _, f := range outcome.Files {
		assert.Equal(t, models.StatusClean, f.Status)
		assert.Equal(t, "No spelling or grammar issues found! 🎉", f.Message)
	}
}

func TestEvaluate_SpellingFailsRegardlessOfCleanBlocks(t *testing.T) {
	outcome := Evaluate(buildLog(
		[2]string{"a.md", cleanReply},
		[2]string{"b.md", issueReply("spelling issue")},
		[2]string{"c.md", cleanReply},
	))

	assert.True(t, outcome.ShouldFail)
	assert.Equal(t, []string{"b.md"}, outcome.BlockingFiles())
	assert.Equal(t, 1, outcome.IssueCount())

	b := outcome.Files[1]
	assert.Equal(t, models.StatusIssues, b.Status)
	require.Len(t, b.Issues, 1)
	assert.Equal(t, models.IssueRecord{
		OriginalText:  "Teh",
		SuggestedText: "The",
		LineNumber:    3,
		Category:      models.CategorySpelling,
	}, b.Issues[0])
}

func TestEvaluate_Categories(t *testing.T) {
	tests := []struct {
		category string
		fail     bool
	}{
		{"spelling issue", true},
		{"Spelling Issue", true},
		{"  SPELLING ISSUE ", true},
		{"both", true},
		{"Both", true},
		{"grammar issue", false},
		{"Grammar Issue", false},
		{"", false},
		{"style", false},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			outcome := Evaluate(buildLog([2]string{"a.md", issueReply(tt.category)}))
			assert.Equal(t, tt.fail, outcome.ShouldFail)
			require.Len(t, outcome.Files, 1)
			assert.Equal(t, models.StatusIssues, outcome.Files[0].Status)
		})
	}
}

func TestEvaluate_GrammarOnlyPasses(t *testing.T) {
	outcome := Evaluate(buildLog(
		[2]string{"a.md", issueReply("grammar issue")},
		[2]string{"b.md", issueReply("grammar issue")},
	))

	assert.False(t, outcome.ShouldFail)
	assert.Equal(t, 2, outcome.IssueCount())
	assert.Empty(t, outcome.BlockingFiles())
}

func TestEvaluate_MalformedBlocksSkipped(t *testing.T) {
	tests := map[string]string{
		"empty fence":    "```json\n```",
		"invalid json":   "```json\n[{\"original_text\": \n```",
		"no fence":       "I could not review this file.",
		"string payload": "```json\n\"ok\"\n```",
		"null payload":   "```json\nnull\n```",
		"object no msg":  "```json\n{\"status\": \"fine\"}\n```",
	}

	for name, reply := range tests {
		t.Run(name, func(t *testing.T) {
			outcome := Evaluate(buildLog(
				[2]string{"bad.md", reply},
				[2]string{"good.md", issueReply("spelling issue")},
			))

			require.Len(t, outcome.Files, 2)
			assert.Equal(t, models.StatusMalformed, outcome.Files[0].Status)
			assert.NotEmpty(t, outcome.Files[0].Message)
			assert.False(t, outcome.Files[0].Blocking)

			// the outcome comes from the remaining blocks
			assert.True(t, outcome.ShouldFail)
		})
	}
}

func TestEvaluate_MalformedAloneDoesNotFail(t *testing.T) {
	outcome := Evaluate(buildLog([2]string{"bad.md", "```json\n```"}))
	assert.False(t, outcome.ShouldFail)
}

func TestEvaluate_LenientRecords(t *testing.T) {
	reply := "```json\n[\n" +
		`"not a record",` + "\n" +
		`{"original_text": "recieve", "suggested_text": "receive", "line_number": "12", "category": "Spelling Issue"},` + "\n" +
		`{"original_text": "x", "line_number": "twelve", "category": "spelling issue"},` + "\n" +
		`{"original_text": "their is", "suggested_text": "there is", "line_number": 4.0, "category": "grammar issue"}` +
		"\n]\n```"

	outcome := Evaluate(buildLog([2]string{"a.md", reply}))

	require.Len(t, outcome.Files, 1)
	f := outcome.Files[0]
	require.Len(t, f.Issues, 3)
	assert.Equal(t, 12, f.Issues[0].LineNumber)
	assert.Equal(t, models.CategorySpelling, f.Issues[0].Category)
	assert.Equal(t, models.IssueRecord{OriginalText: "x", Category: models.CategorySpelling}, f.Issues[1])
	assert.Equal(t, 4, f.Issues[2].LineNumber)
	assert.True(t, f.Blocking)
	assert.True(t, outcome.ShouldFail)
}

func TestEvaluate_UnreadableLineNumberStillBlocks(t *testing.T) {
	tests := map[string]string{
		"range string": `{"original_text": "Teh", "suggested_text": "The", "line_number": "3-4", "category": "spelling issue"}`,
		"list":         `{"original_text": "Teh", "line_number": [3, 4], "category": "both"}`,
		"object":       `{"original_text": "Teh", "line_number": {"start": 3}, "category": "Spelling Issue"}`,
	}

	for name, entry := range tests {
		t.Run(name, func(t *testing.T) {
			outcome := Evaluate(buildLog([2]string{"a.md", "```json\n[" + entry + "]\n```"}))

			require.Len(t, outcome.Files, 1)
			f := outcome.Files[0]
			assert.Equal(t, models.StatusIssues, f.Status)
			require.Len(t, f.Issues, 1)
			assert.Equal(t, "Teh", f.Issues[0].OriginalText)
			assert.Zero(t, f.Issues[0].LineNumber)
			assert.True(t, f.Blocking)
			assert.True(t, outcome.ShouldFail)
		})
	}
}

func TestEvaluate_UnreadableGrammarEntryPasses(t *testing.T) {
	reply := "```json\n[{\"line_number\": \"3-4\", \"category\": \"grammar issue\"}]\n```"
	outcome := Evaluate(buildLog([2]string{"a.md", reply}))

	require.Len(t, outcome.Files, 1)
	assert.Equal(t, models.StatusIssues, outcome.Files[0].Status)
	assert.False(t, outcome.ShouldFail)
}

func TestEvaluate_EmptyIssueList(t *testing.T) {
	outcome := Evaluate(buildLog([2]string{"a.md", "```json\n[]\n```"}))

	require.Len(t, outcome.Files, 1)
	assert.Equal(t, models.StatusClean, outcome.Files[0].Status)
	assert.False(t, outcome.ShouldFail)
}

func TestEvaluate_EmptyLog(t *testing.T) {
	outcome := Evaluate(nil)
	assert.Empty(t, outcome.Files)
	assert.False(t, outcome.ShouldFail)
}

func TestExtractFence(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
		ok     bool
	}{
		{
			name:   "json tagged",
			source: "text\n```json\n[1]\n```\n",
			want:   "[1]\n",
			ok:     true,
		},
		{
			name:   "prefers json over earlier fence",
			source: "```text\nhello\n```\n\n```JSON\n{\"message\": \"hi\"}\n```\n",
			want:   "{\"message\": \"hi\"}\n",
			ok:     true,
		},
		{
			name:   "untagged fallback",
			source: "```\n[]\n```",
			want:   "[]\n",
			ok:     true,
		},
		{
			name:   "tilde fence",
			source: "~~~json\n[]\n~~~",
			want:   "[]\n",
			ok:     true,
		},
		{
			name:   "none",
			source: "just words",
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractFence([]byte(tt.source))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	require.NoError(t, os.WriteFile(path, buildLog([2]string{"a.md", issueReply("both")}), 0o644))

	outcome, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, path, outcome.LogPath)
	assert.True(t, outcome.ShouldFail)

	safe := FileOrFailSafe(path)
	assert.True(t, safe.ShouldFail)
	assert.Empty(t, safe.EvalError)
	assert.Equal(t, []string{"a.md"}, safe.BlockingFiles())
}

func TestFileOrFailSafe_MissingLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")

	_, err := File(path)
	require.ErrorIs(t, err, os.ErrNotExist)

	outcome := FileOrFailSafe(path)
	assert.True(t, outcome.ShouldFail)
	assert.Equal(t, path, outcome.LogPath)
	assert.Contains(t, outcome.EvalError, "missing.txt")
	assert.Empty(t, outcome.Files)
	assert.False(t, outcome.Timestamp.IsZero())
}

func TestFileOrFailSafe_CleanLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	require.NoError(t, os.WriteFile(path, buildLog([2]string{"a.md", cleanReply}), 0o644))

	outcome := FileOrFailSafe(path)
	assert.False(t, outcome.ShouldFail)
	assert.Empty(t, outcome.EvalError)
}
