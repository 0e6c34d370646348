package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spboyer/mdspell/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one run over a results log.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one reviewed file.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitFailure represents a file with blocking issues.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents a file that could not be reviewed or evaluated.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a test as skipped.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

const (
	suiteName = "mdspell"

	failureType   = "SpellingIssue"
	malformedType = "MalformedReview"
	skippedType   = "ReviewSkipped"
	evalErrorType = "EvaluationError"
)

// RunInfo describes how a run was configured, for the report's properties.
type RunInfo struct {
	Engine string
	Model  string
}

// ConvertToJUnit converts a RunOutcome to JUnit XML format. Each reviewed
// file is a test case that fails when it has a blocking issue.
func ConvertToJUnit(outcome *models.RunOutcome, info RunInfo) *JUnitTestSuites {
	suite := JUnitTestSuite{
		Name:      suiteName,
		Timestamp: outcome.Timestamp.Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "engine", Value: info.Engine},
			{Name: "model", Value: info.Model},
			{Name: "log", Value: outcome.LogPath},
			{Name: "issues", Value: fmt.Sprintf("%d", outcome.IssueCount())},
		},
	}

	for i := range outcome.Files {
		suite.TestCases = append(suite.TestCases, convertFileOutcome(&outcome.Files[i]))
	}

	for _, sf := range outcome.Skipped {
		tc := JUnitTestCase{Name: sf.Path, Classname: suiteName}
		if sf.Reason == models.SkipReasonEmpty {
			tc.Skipped = &JUnitSkipped{Message: sf.Reason}
		} else {
			tc.Error = &JUnitError{Message: sf.Reason, Type: skippedType}
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	if outcome.EvalError != "" {
		suite.TestCases = append(suite.TestCases, JUnitTestCase{
			Name:      outcome.LogPath,
			Classname: suiteName,
			Error:     &JUnitError{Message: outcome.EvalError, Type: evalErrorType},
		})
	}

	for _, tc := range suite.TestCases {
		suite.Tests++
		switch {
		case tc.Failure != nil:
			suite.Failures++
		case tc.Error != nil:
			suite.Errors++
		case tc.Skipped != nil:
			suite.Skipped++
		}
	}

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func convertFileOutcome(fo *models.FileOutcome) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      fo.File,
		Classname: suiteName,
	}

	switch {
	case fo.Status == models.StatusMalformed:
		tc.Error = &JUnitError{Message: fo.Message, Type: malformedType}
	case fo.Blocking:
		tc.Failure = &JUnitFailure{
			Message: fmt.Sprintf("%s: %d blocking issue(s)", fo.File, countBlocking(fo.Issues)),
			Type:    failureType,
			Body:    formatIssues(fo.Issues),
		}
	case len(fo.Issues) > 0:
		// advisory findings are reported but don't fail the case
		tc.SystemOut = formatIssues(fo.Issues)
	}

	return tc
}

func countBlocking(issues []models.IssueRecord) int {
	n := 0
	for _, is := range issues {
		if is.Category.Blocking() {
			n++
		}
	}
	return n
}

func formatIssues(issues []models.IssueRecord) string {
	var sb strings.Builder
	for _, is := range issues {
		fmt.Fprintf(&sb, "line %d [%s]: %q -> %q\n", is.LineNumber, is.Category, is.OriginalText, is.SuggestedText)
	}
	return sb.String()
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(outcome *models.RunOutcome, info RunInfo, path string) error {
	suites := ConvertToJUnit(outcome, info)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
