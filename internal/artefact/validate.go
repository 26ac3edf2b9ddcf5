package artefact

import (
	"fmt"
	"regexp"
)

// Canonical headers for loop documents, byte-exact including emoji.
const (
	HeaderPurpose     = "## Purpose"
	HeaderObjectives  = "## ✅ Objectives"
	HeaderTasks       = "## 🔧 Tasks"
	HeaderExecLog     = "## 🧾 Execution Log"
	HeaderMemoryTrace = "## 🧠 Memory Trace"
)

// Canonical headers for phase documents.
const (
	HeaderCompletedLoops = "## ✅ Completed Loops"
	HeaderPhaseComplete  = "## 🏁 Phase Complete"
)

// LoopRequiredSections lists the headers every loop document must carry,
// in document order.
func LoopRequiredSections() []string {
	return []string{
		HeaderPurpose,
		HeaderObjectives,
		HeaderTasks,
		HeaderExecLog,
		HeaderMemoryTrace,
	}
}

// PhaseRequiredSections lists the headers every phase document must carry.
func PhaseRequiredSections() []string {
	return []string{
		HeaderCompletedLoops,
		HeaderPhaseComplete,
	}
}

// ValidationResult reports required-section presence for one document body.
type ValidationResult struct {
	IsValid                 bool
	MissingRequiredSections []string
	DuplicatedSections      []string
	Errors                  []string
}

// Validate counts line-anchored occurrences of each required header string in
// the raw body. Unlike SplitSections this matches the literal header text, so
// a renamed or re-leveled header counts as missing.
func Validate(body string, requiredSections []string) ValidationResult {
	result := ValidationResult{
		MissingRequiredSections: []string{},
		DuplicatedSections:      []string{},
		Errors:                  []string{},
	}

	for _, header := range requiredSections {
		re := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(header))
		count := len(re.FindAllStringIndex(body, -1))

		switch {
		case count == 0:
			result.MissingRequiredSections = append(result.MissingRequiredSections, header)
			result.Errors = append(result.Errors, fmt.Sprintf("missing required section: %s", header))
		case count > 1:
			result.DuplicatedSections = append(result.DuplicatedSections, header)
			result.Errors = append(result.Errors, fmt.Sprintf("duplicated section: %s", header))
		}
	}

	result.IsValid = len(result.MissingRequiredSections) == 0 && len(result.DuplicatedSections) == 0

	return result
}
