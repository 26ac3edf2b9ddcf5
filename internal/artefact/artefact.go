package artefact

import "time"

// Required frontmatter fields for a document to count as a complete artefact.
// A document missing one is still readable; downstream consumers treat it as
// incomplete.
var requiredFields = []string{"uuid", "title", "phase", "workstream"} //nolint:gochecknoglobals // package-level constant

// Artefact is the parsed view of one loop document: decoded metadata, the
// section map, the extracted checklist tasks, and the loop-schema validation
// result. All fields are value objects rebuilt fresh from the raw text on
// every call; the file is the source of truth.
type Artefact struct {
	Metadata   *Metadata
	Body       string
	Sections   *Sections
	Tasks      []Task
	Validation ValidationResult
}

// Parse decodes a raw loop document. It never fails: malformed structure
// degrades to empty metadata, an empty section map, or no tasks, and the
// Validation field reports what is missing.
func Parse(raw string) Artefact {
	meta, body := Decode(raw)

	return Artefact{
		Metadata:   meta,
		Body:       body,
		Sections:   SplitSections(body),
		Tasks:      ExtractTasks(raw),
		Validation: Validate(body, LoopRequiredSections()),
	}
}

// Complete reports whether all required artefact fields are present and
// non-empty.
func (a Artefact) Complete() bool {
	for _, field := range requiredFields {
		value, ok := a.Metadata.GetString(field)
		if !ok || value == "" {
			return false
		}
	}

	return true
}

// UUID returns the artefact uuid, or "" when absent.
func (a Artefact) UUID() string {
	id, _ := a.Metadata.GetString("uuid")

	return id
}

// Artefact defaults applied whenever a field is absent at creation time.
// Centralized here so every call site agrees.
const (
	DefaultStatus = "in_progress"
	DefaultOrigin = "gpt"
)

// NewLoopMetadata builds the frontmatter for a fresh loop document in
// canonical field order, applying the defaults table.
func NewLoopMetadata(uuid, title, phase, workstream string, created time.Time) *Metadata {
	meta := NewMetadata()
	meta.Set("uuid", StringValue(uuid))
	meta.Set("title", StringValue(title))
	meta.Set("phase", StringValue(phase))
	meta.Set("workstream", StringValue(workstream))
	meta.Set("status", StringValue(DefaultStatus))
	meta.Set("tags", ListValue([]string{}))
	meta.Set("created", StringValue(created.UTC().Format(time.RFC3339)))
	meta.Set("origin", StringValue(DefaultOrigin))
	meta.Set("summary", LiteralValue(""))

	return meta
}

// NewLoopBody returns the canonical section skeleton for a fresh loop
// document. A document built from it passes Validate against
// LoopRequiredSections.
func NewLoopBody(purpose string) string {
	if purpose == "" {
		purpose = "TBD"
	}

	return HeaderPurpose + "\n\n" + purpose + "\n\n" +
		HeaderObjectives + "\n\n" +
		HeaderTasks + "\n\n" +
		HeaderExecLog + "\n\n" +
		HeaderMemoryTrace + "\n"
}
