package models

import (
	"strings"

	"golang.org/x/text/cases"
)

// Category identifies the kind of problem the reviewer found on a line.
type Category string

const (
	CategorySpelling Category = "spelling issue"
	CategoryGrammar  Category = "grammar issue"
	CategoryBoth     Category = "both"
	CategoryNone     Category = "none"
)

// NormalizeCategory folds case and strips surrounding whitespace so that
// "Spelling Issue " and "spelling issue" compare equal. An empty category is
// reported as CategoryNone.
func NormalizeCategory(s string) Category {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryNone
	}
	return Category(cases.Fold().String(s))
}

// Blocking reports whether an issue of this category fails the pipeline.
// Only spelling problems block; grammar-only findings are advisory.
func (c Category) Blocking() bool {
	switch NormalizeCategory(string(c)) {
	case CategorySpelling, CategoryBoth:
		return true
	default:
		return false
	}
}

// IssueRecord is one finding returned by the reviewer.
type IssueRecord struct {
	OriginalText  string   `json:"original_text" mapstructure:"original_text"`
	SuggestedText string   `json:"suggested_text" mapstructure:"suggested_text"`
	LineNumber    int      `json:"line_number" mapstructure:"line_number"`
	Category      Category `json:"category" mapstructure:"category"`
}
