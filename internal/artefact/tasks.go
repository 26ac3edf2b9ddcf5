package artefact

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// MemoryTraceEntry is one JSON object embedded in a ```json:memory fenced
// block inside the Memory Trace section. Association back to a task is by
// exact match on Description.
type MemoryTraceEntry struct {
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
	Status      string `json:"status"` // "completed" or "executed"
	Executor    string `json:"executor"`
	Output      string `json:"output,omitempty"`
}

// Task origins recognized from execution-log provenance markers.
const (
	OriginGPT  = "gpt"
	OriginPlan = "plan"
)

// Task is one checklist line extracted from a Tasks section.
type Task struct {
	ID           string
	Description  string
	IsComplete   bool
	SourceLoop   string
	MemoryTraces []MemoryTraceEntry
	Origin       string // OriginGPT, OriginPlan, or "" when unknown.
}

var (
	memoryBlockRe = regexp.MustCompile("(?s)```json:memory\\s*\\n(.*?)\\n?```")
	checkboxRe    = regexp.MustCompile(`(?m)^- \[([ x])\] (.+?)\s*$`)

	// Provenance markers written into execution-log entries when a task is
	// promoted from a GPT suggestion or from the workstream plan.
	gptPromotionRe  = regexp.MustCompile(`Task promoted from GPT suggestion: "([^"]+)" \(GPT-suggested\)`)
	planPromotionRe = regexp.MustCompile(`Task promoted from workstream_plan\.md: "([^"]+)" by ora`)

	// Matches the Tasks header, optionally preceded by a single emoji or
	// other non-space token, through the next ## header or end of body.
	tasksSectionRe = regexp.MustCompile(`(?ms)^##\s+(?:[^\s#]+\s+)?Tasks\s*$(.*?)(?:^## |\z)`)
)

// MemoryTraces scans the whole body for json:memory fenced blocks and decodes
// each one. Blocks that fail to decode are skipped; the rest of the document
// is still processed.
func MemoryTraces(body string) []MemoryTraceEntry {
	var entries []MemoryTraceEntry

	for _, match := range memoryBlockRe.FindAllStringSubmatch(body, -1) {
		var entry MemoryTraceEntry

		err := json.Unmarshal([]byte(match[1]), &entry)
		if err != nil {
			continue
		}

		entries = append(entries, entry)
	}

	return entries
}

// FormatMemoryTrace renders an entry as the fenced block the document format
// embeds.
func FormatMemoryTrace(entry MemoryTraceEntry) string {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		// MemoryTraceEntry has no unmarshalable fields.
		panic(fmt.Sprintf("marshal memory trace: %v", err))
	}

	return "```json:memory\n" + string(data) + "\n```"
}

// TasksSection returns the raw Tasks section text (header excluded), or
// ("", false) when the document has no Tasks header.
func TasksSection(body string) (string, bool) {
	match := tasksSectionRe.FindStringSubmatch(body)
	if match == nil {
		return "", false
	}

	return match[1], true
}

// ExtractTasks parses a raw document and returns its checklist tasks in
// document order. A document without a uuid yields no tasks. Task ids are
// synthesized as {uuid}-task-{index} and are stable only while task order is
// unchanged.
func ExtractTasks(raw string) []Task {
	meta, body := Decode(raw)

	// Schema gaps never stop extraction; callers that want them read the
	// ValidationResult off Parse.
	_ = Validate(body, LoopRequiredSections())

	loopID, ok := meta.GetString("uuid")
	if !ok || loopID == "" {
		return nil
	}

	traces := MemoryTraces(body)
	gptOrigins := promotionSet(gptPromotionRe, body)
	planOrigins := promotionSet(planPromotionRe, body)

	section, ok := TasksSection(body)
	if !ok {
		return nil
	}

	var tasks []Task

	for idx, match := range checkboxRe.FindAllStringSubmatch(section, -1) {
		description := match[2]

		task := Task{
			ID:           fmt.Sprintf("%s-task-%d", loopID, idx),
			Description:  description,
			IsComplete:   match[1] == "x",
			SourceLoop:   loopID,
			MemoryTraces: tracesFor(traces, description),
		}

		switch {
		case gptOrigins[description]:
			task.Origin = OriginGPT
		case planOrigins[description]:
			task.Origin = OriginPlan
		}

		tasks = append(tasks, task)
	}

	return tasks
}

func promotionSet(re *regexp.Regexp, body string) map[string]bool {
	set := make(map[string]bool)

	for _, match := range re.FindAllStringSubmatch(body, -1) {
		set[strings.TrimSpace(match[1])] = true
	}

	return set
}

func tracesFor(traces []MemoryTraceEntry, description string) []MemoryTraceEntry {
	var out []MemoryTraceEntry

	for _, trace := range traces {
		if trace.Description == description {
			out = append(out, trace)
		}
	}

	return out
}
