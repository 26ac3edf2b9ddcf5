package artefact_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ora/internal/artefact"
)

type metaField struct {
	Key   string
	Value artefact.Value
}

// metaFields projects ordered metadata into a comparable slice.
func metaFields(t *testing.T, meta *artefact.Metadata) []metaField {
	t.Helper()

	var out []metaField

	for _, key := range meta.Keys() {
		value, ok := meta.Get(key)
		if !ok {
			t.Fatalf("key %q listed but missing", key)
		}

		out = append(out, metaField{Key: key, Value: value})
	}

	return out
}

func Test_Decode_ReturnsMetadataAndBody_When_FrontmatterPresent(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"---",
		"uuid: abc123",
		"title: \"Fix the importer\"",
		"phase: 'Phase 2'",
		"workstream: alpha",
		"tags: [infra, importer]",
		"score: 3",
		"routed: true",
		"summary: |",
		"  First line.",
		"  Second line.",
		"---",
		"",
		"## Purpose",
		"",
		"Keep imports healthy.",
		"",
	}, "\n")

	meta, body := artefact.Decode(raw)

	wantBody := "## Purpose\n\nKeep imports healthy.\n"
	if body != wantBody {
		t.Fatalf("body mismatch:\ngot  %q\nwant %q", body, wantBody)
	}

	if got, _ := meta.GetString("uuid"); got != "abc123" {
		t.Errorf("uuid = %q, want abc123", got)
	}

	if got, _ := meta.GetString("title"); got != "Fix the importer" {
		t.Errorf("title = %q, want unquoted value", got)
	}

	if got, _ := meta.GetString("phase"); got != "Phase 2" {
		t.Errorf("phase = %q, want single quotes stripped", got)
	}

	tags, ok := meta.GetList("tags")
	if !ok {
		t.Fatal("tags missing or not a list")
	}

	if diff := cmp.Diff([]string{"infra", "importer"}, tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	score, ok := meta.GetNumber("score")
	if !ok || score != 3 {
		t.Errorf("score = %v (ok=%v), want number 3", score, ok)
	}

	routed, ok := meta.Get("routed")
	if !ok || routed.Kind != artefact.ValueBool || !routed.Bool {
		t.Errorf("routed = %+v, want bool true", routed)
	}

	summary, _ := meta.GetString("summary")
	if summary != "First line.\nSecond line." {
		t.Errorf("summary = %q, want two-line literal", summary)
	}

	wantOrder := []string{"uuid", "title", "phase", "workstream", "tags", "score", "routed", "summary"}
	if diff := cmp.Diff(wantOrder, meta.Keys()); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}
}

func Test_Decode_ReturnsWholeInputAsBody_When_NoFrontmatter(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
	}{
		{name: "plain markdown", raw: "## Purpose\n\nNo metadata here.\n"},
		{name: "empty input", raw: ""},
		{name: "delimiter mid-document", raw: "intro\n---\nuuid: x\n---\n"},
		{name: "unclosed frontmatter", raw: "---\nuuid: abc\nno closing fence\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			meta, body := artefact.Decode(tc.raw)

			if meta.Len() != 0 {
				t.Errorf("metadata has %d fields, want 0", meta.Len())
			}

			if body != tc.raw {
				t.Errorf("body = %q, want entire input", body)
			}
		})
	}
}

func Test_Decode_SkipsLine_When_NotKeyValue(t *testing.T) {
	t.Parallel()

	raw := "---\nuuid: abc\nthis line has no colon at all...wait it does not\n---\nbody\n"

	meta, body := artefact.Decode(raw)

	if got, _ := meta.GetString("uuid"); got != "abc" {
		t.Errorf("uuid = %q, want abc", got)
	}

	if body != "body\n" {
		t.Errorf("body = %q, want %q", body, "body\n")
	}
}

func Test_Decode_CoercesNumbers_When_ValueIsNumeric(t *testing.T) {
	t.Parallel()

	raw := "---\nscore: 4\nweight: 2.5\nversion: v2\n---\n"

	meta, _ := artefact.Decode(raw)

	if n, ok := meta.GetNumber("score"); !ok || n != 4 {
		t.Errorf("score = %v (ok=%v), want 4", n, ok)
	}

	if n, ok := meta.GetNumber("weight"); !ok || n != 2.5 {
		t.Errorf("weight = %v (ok=%v), want 2.5", n, ok)
	}

	// "v2" must stay a string even though it contains a digit.
	if s, ok := meta.GetString("version"); !ok || s != "v2" {
		t.Errorf("version = %q (ok=%v), want string v2", s, ok)
	}
}

// Contract: decode(encode(m, b)) reproduces m and b for any metadata map that
// decode itself can produce.
func Test_EncodeDecode_RoundTrips_When_MetadataProducedByDecode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
	}{
		{
			name: "artefact shape",
			raw: strings.Join([]string{
				"---",
				"uuid: abc123",
				"title: Fix the importer",
				"phase: Phase 2",
				"workstream: alpha",
				"status: in_progress",
				"tags: [infra, importer]",
				"created: 2025-06-01T12:00:00Z",
				"origin: gpt",
				"summary: |",
				"  One.",
				"  Two.",
				"---",
				"",
				"## Purpose",
				"",
				"Body text.",
				"",
			}, "\n"),
		},
		{
			name: "empty list and booleans",
			raw:  "---\ntags: []\nrouted: false\nscore: 10\n---\n\nbody\n",
		},
		{
			// Quoted scalars that would decode as another kind if written bare.
			name: "strings shadowing other kinds",
			raw: strings.Join([]string{
				"---",
				`flag: "true"`,
				`off: "false"`,
				`score: "3"`,
				`weight: "2.5"`,
				`listish: "[a, b]"`,
				`pipe: "|"`,
				`quoted: '"a"'`,
				"---",
				"",
				"body",
				"",
			}, "\n"),
		},
		{
			name: "padded and empty strings",
			raw:  "---\nnote: \" padded \"\nblank: \"\"\n---\n\nbody\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			meta, body := artefact.Decode(tc.raw)

			encoded := artefact.Encode(meta, body)
			meta2, body2 := artefact.Decode(encoded)

			if diff := cmp.Diff(metaFields(t, meta), metaFields(t, meta2)); diff != "" {
				t.Errorf("metadata did not round-trip (-first +second):\n%s", diff)
			}

			if body2 != body {
				t.Errorf("body did not round-trip:\ngot  %q\nwant %q", body2, body)
			}
		})
	}
}

func Test_Encode_WritesFieldsInInsertionOrder(t *testing.T) {
	t.Parallel()

	meta := artefact.NewMetadata()
	meta.Set("uuid", artefact.StringValue("abc"))
	meta.Set("title", artefact.StringValue("T"))
	meta.Set("tags", artefact.ListValue([]string{"a", "b"}))
	meta.Set("score", artefact.NumberValue(7))

	got := artefact.Encode(meta, "body\n")

	want := "---\nuuid: abc\ntitle: T\ntags: [a, b]\nscore: 7\n---\n\nbody\n"
	if got != want {
		t.Fatalf("encoded mismatch:\ngot  %q\nwant %q", got, want)
	}
}
