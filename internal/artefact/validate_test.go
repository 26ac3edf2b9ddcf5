package artefact_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ora/internal/artefact"
)

func loopBodyWithAllSections() string {
	return strings.Join([]string{
		"## Purpose",
		"",
		"Why this loop exists.",
		"",
		"## ✅ Objectives",
		"",
		"## 🔧 Tasks",
		"",
		"## 🧾 Execution Log",
		"",
		"## 🧠 Memory Trace",
		"",
	}, "\n")
}

func Test_Validate_ReportsValid_When_AllRequiredSectionsPresentOnce(t *testing.T) {
	t.Parallel()

	result := artefact.Validate(loopBodyWithAllSections(), artefact.LoopRequiredSections())

	if !result.IsValid {
		t.Fatalf("IsValid = false, errors: %v", result.Errors)
	}

	if len(result.MissingRequiredSections) != 0 || len(result.DuplicatedSections) != 0 {
		t.Errorf("unexpected findings: missing=%v duplicated=%v",
			result.MissingRequiredSections, result.DuplicatedSections)
	}
}

func Test_Validate_ReportsMissing_When_AnyRequiredSectionRemoved(t *testing.T) {
	t.Parallel()

	for _, header := range artefact.LoopRequiredSections() {
		t.Run(header, func(t *testing.T) {
			t.Parallel()

			body := strings.Replace(loopBodyWithAllSections(), header+"\n", "", 1)

			result := artefact.Validate(body, artefact.LoopRequiredSections())

			if result.IsValid {
				t.Fatal("IsValid = true after removing a required section")
			}

			if diff := cmp.Diff([]string{header}, result.MissingRequiredSections); diff != "" {
				t.Errorf("missing sections mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_Validate_ReportsDuplicated_When_RequiredSectionAppearsTwice(t *testing.T) {
	t.Parallel()

	body := loopBodyWithAllSections() + "\n" + artefact.HeaderTasks + "\n"

	result := artefact.Validate(body, artefact.LoopRequiredSections())

	if result.IsValid {
		t.Fatal("IsValid = true with a duplicated section")
	}

	if diff := cmp.Diff([]string{artefact.HeaderTasks}, result.DuplicatedSections); diff != "" {
		t.Errorf("duplicated sections mismatch (-want +got):\n%s", diff)
	}

	if len(result.MissingRequiredSections) != 0 {
		t.Errorf("unexpected missing sections: %v", result.MissingRequiredSections)
	}
}

func Test_Validate_MatchesLiteralHeaders_When_EmojiStripped(t *testing.T) {
	t.Parallel()

	// The validator is stricter than the splitter: "## Tasks" does not
	// satisfy the canonical "## 🔧 Tasks" requirement.
	body := strings.Replace(loopBodyWithAllSections(), artefact.HeaderTasks, "## Tasks", 1)

	result := artefact.Validate(body, artefact.LoopRequiredSections())

	if result.IsValid {
		t.Fatal("IsValid = true for renamed header")
	}

	if diff := cmp.Diff([]string{artefact.HeaderTasks}, result.MissingRequiredSections); diff != "" {
		t.Errorf("missing sections mismatch (-want +got):\n%s", diff)
	}
}

func Test_Validate_ChecksPhaseSections_When_PhaseSetUsed(t *testing.T) {
	t.Parallel()

	body := "## ✅ Completed Loops\n\n- loop-1\n\n## 🏁 Phase Complete\n\nNo.\n"

	result := artefact.Validate(body, artefact.PhaseRequiredSections())

	if !result.IsValid {
		t.Fatalf("IsValid = false, errors: %v", result.Errors)
	}
}
