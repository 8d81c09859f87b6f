// Package report renders completed analysis payloads as a plain-text bundle
// summary and as a spreadsheet.
package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"
)

const unknownValue = "?"

// Decode parses an operation payload into the fields reports use.
func Decode(payload []byte) (*domain.AnalyzeResult, error) {
	var res domain.AnalyzeResult
	if err := json.Unmarshal(payload, &res); err != nil {
		appErr := apperrors.NewInvalidInputError("analysis result is not valid JSON")
		appErr.Cause = err
		return nil, appErr
	}
	return &res, nil
}

// Summary lists every document found in the bundle with its page range and
// field count.
func Summary(res *domain.AnalyzeResult) string {
	contents := res.Result.Contents

	lastPage := unknownValue
	if n := len(contents); n > 0 {
		lastPage = pageString(contents[n-1].EndPageNumber)
	}

	var b strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}
	rule := func(n int) { line("%s", strings.Repeat("-", n)) }

	line("DOCUMENT BUNDLE SUMMARY")
	line("%s", strings.Repeat("=", 50))
	line("Total documents found: %d", len(contents))
	line("Total pages in bundle: %s", lastPage)
	line("")
	line("Document Summary:")
	rule(80)
	line("%-3s %-50s %-8s %-8s", "#", "Document Type", "Pages", "Fields")
	rule(80)

	totalExpenses := 0
	for i, c := range contents {
		pages := unknownValue
		if c.StartPageNumber != nil && c.EndPageNumber != nil {
			pages = fmt.Sprintf("%d-%d", *c.StartPageNumber, *c.EndPageNumber)
		}

		fieldInfo := strconv.Itoa(len(c.Fields))
		if expenses, ok := c.Fields[expensesField]; ok {
			totalExpenses += len(expenses.ValueArray)
			fieldInfo = fmt.Sprintf("%d (+%d expenses)", len(c.Fields), len(expenses.ValueArray))
		}

		line("%-3d %-50s %-8s %-8s", i+1, categoryOf(c), pages, fieldInfo)
	}

	rule(80)
	line("")
	line("Total expenses found across all documents: %d", totalExpenses)
	line("")
	line("Field Distribution:")
	line("   - Insurance Claim Form: Patient information fields")
	line("   - Billing Statements: Expense details + document titles")
	b.WriteString("   - Other Documents: Document titles only")
	return b.String()
}

func categoryOf(c domain.ContentItem) string {
	if c.Category == "" {
		return "Unknown"
	}
	return c.Category
}

func pageString(p *int) string {
	if p == nil {
		return unknownValue
	}
	return strconv.Itoa(*p)
}

// pageCount is end-start+1 when both bounds are known.
func pageCount(c domain.ContentItem) string {
	if c.StartPageNumber == nil || c.EndPageNumber == nil {
		return unknownValue
	}
	return strconv.Itoa(*c.EndPageNumber - *c.StartPageNumber + 1)
}
