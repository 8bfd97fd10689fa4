// Package progress reports how much of an intake record has been filled,
// section by section, so the session can show the user what is still missing.
package progress

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spigell/eb1a-intake/internal/intake"
)

// Section names in display order, matching the record's JSON keys.
var sections = []string{
	"basic_information",
	"visa_and_role",
	"eb1a_criteria",
	"supporting_documents",
}

// Step describes the completeness of a single record section.
type Step struct {
	Section string
	Filled  int
	Missing []string
	Total   int
}

// Report aggregates completeness across all record sections.
type Report struct {
	Steps  []Step
	Filled int
	Total  int
}

// Build walks the record's key/value tree and counts non-empty fields per
// section. An explicit "N/A" answer counts as filled: the criterion has been
// addressed even though it does not apply.
func Build(record *intake.Record) *Report {
	tree := record.Tree()

	report := &Report{}
	for _, name := range sections {
		fields, ok := tree[name].(map[string]any)
		if !ok {
			continue
		}

		step := Step{Section: name, Total: len(fields)}
		for key, value := range fields {
			text, _ := value.(string)
			if strings.TrimSpace(text) == "" {
				step.Missing = append(step.Missing, key)
				continue
			}
			step.Filled++
		}

		report.Steps = append(report.Steps, step)
		report.Filled += step.Filled
		report.Total += step.Total
	}

	return report
}

// Complete reports whether every field has been addressed.
func (r *Report) Complete() bool {
	return r.Total > 0 && r.Filled == r.Total
}

// String renders the report as one line per section plus a total.
func (r *Report) String() string {
	var builder strings.Builder
	for _, step := range r.Steps {
		fmt.Fprintf(&builder, "%s: %d/%d filled", step.Section, step.Filled, step.Total)
		if len(step.Missing) > 0 {
			fmt.Fprintf(&builder, " (missing: %s)", strings.Join(sortedCopy(step.Missing), ", "))
		}
		builder.WriteString("\n")
	}
	fmt.Fprintf(&builder, "total: %d/%d", r.Filled, r.Total)
	return builder.String()
}

func sortedCopy(values []string) []string {
	copied := append([]string(nil), values...)
	sort.Strings(copied)
	return copied
}
