package artefact_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ora/internal/artefact"
)

func Test_SplitSections_KeysSectionsCanonically_When_BodyHasLoopHeaders(t *testing.T) {
	t.Parallel()

	body := strings.Join([]string{
		"## Purpose",
		"",
		"Keep things moving.",
		"",
		"## ✅ Objectives",
		"",
		"- land the fix",
		"",
		"## 🔧 Tasks",
		"",
		"- [ ] Write tests",
		"",
		"## 🧾 Execution Log",
		"",
		"## 🧠 Memory Trace",
		"",
	}, "\n")

	sections := artefact.SplitSections(body)

	wantKeys := []string{"purpose", "objectives", "tasks", "executionLog", "memoryTrace"}
	if diff := cmp.Diff(wantKeys, sections.Keys()); diff != "" {
		t.Fatalf("section keys mismatch (-want +got):\n%s", diff)
	}

	purpose, ok := sections.Get("purpose")
	if !ok {
		t.Fatal("purpose section missing")
	}

	if !strings.HasPrefix(purpose, "## Purpose\n") {
		t.Errorf("purpose section should include its header line, got %q", purpose)
	}

	if !strings.Contains(purpose, "Keep things moving.") {
		t.Errorf("purpose section should include its content, got %q", purpose)
	}
}

func Test_SplitSections_DiscardsLines_When_BeforeFirstHeader(t *testing.T) {
	t.Parallel()

	body := "stray preamble\nmore preamble\n\n## Purpose\n\ntext\n"

	sections := artefact.SplitSections(body)

	if sections.Len() != 1 {
		t.Fatalf("got %d sections, want 1", sections.Len())
	}

	purpose, _ := sections.Get("purpose")
	if strings.Contains(purpose, "preamble") {
		t.Errorf("preamble leaked into section: %q", purpose)
	}
}

func Test_SectionKey_IsPureFunctionOfHeaderText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		header string
		want   string
	}{
		{header: "Purpose", want: "purpose"},
		{header: "✅ Objectives", want: "objectives"},
		{header: "🔧 Tasks", want: "tasks"},
		{header: "User-Defined Tasks", want: "tasks"},
		{header: "🧾 Execution Log", want: "executionLog"},
		{header: "Log", want: "executionLog"},
		{header: "🧠 Memory Trace", want: "memoryTrace"},
		{header: "✅ Completed Loops", want: "completed-loops"},
		{header: "🏁 Phase Complete", want: "phase-complete"},
		{header: "Some Unknown Header!", want: "some-unknown-header"},
	}

	for _, tc := range cases {
		t.Run(tc.header, func(t *testing.T) {
			t.Parallel()

			got := artefact.SectionKey(tc.header)
			if got != tc.want {
				t.Errorf("SectionKey(%q) = %q, want %q", tc.header, got, tc.want)
			}

			// Same input must always yield the same key.
			if again := artefact.SectionKey(tc.header); again != got {
				t.Errorf("SectionKey is not stable: %q then %q", got, again)
			}
		})
	}
}
