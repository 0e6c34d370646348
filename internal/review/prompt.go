package review

import (
	"strings"
)

// Prompt is the system/user message pair sent for one file.
type Prompt struct {
	System string
	User   string
}

const systemPrompt = "You are a meticulous proofreader for technical documentation written in markdown. " +
	"You report spelling and grammar mistakes and nothing else."

const userPromptHeader = `Review the numbered lines below for spelling and grammar mistakes.

Rules:
- Only report lines that contain a mistake. Ignore markdown syntax, code, URLs and product names.
- Reply with a single fenced code block tagged json and nothing after it.
- When there are mistakes, the block holds a JSON array with one object per mistake:
  {"original_text": "<text as written>", "suggested_text": "<corrected text>", "line_number": <number>, "category": "<spelling issue | grammar issue | both>"}
- Use "both" when the same text has a spelling and a grammar mistake.
- When there are no mistakes at all, the block holds exactly one object with a short celebratory note:
  {"message": "No spelling or grammar issues found! 🎉"}

Lines:
`

// BuildPrompt renders the fixed review instructions around the numbered
// lines.
func BuildPrompt(numbered []string) Prompt {
	var user strings.Builder
	user.WriteString(userPromptHeader)

	for _, line := range numbered {
		user.WriteString(line)
		user.WriteByte('\n')
	}

	return Prompt{
		System: systemPrompt,
		User:   user.String(),
	}
}

// Flatten joins the pair for engines that accept a single message.
func (p Prompt) Flatten() string {
	return p.System + "\n\n" + p.User
}
