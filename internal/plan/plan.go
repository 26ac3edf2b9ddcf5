// Package plan parses and serializes the workstream plan document: two fixed
// `###` sections holding multi-line checklist tasks annotated with inline
// backtick metadata lines.
//
// Unlike loop documents the plan has no required frontmatter; Stringify only
// preserves a leading frontmatter block verbatim when the seed content carries
// one. The serializer is lossy by design: it emits the canonical shape, not
// the input layout, and drops rejected tasks entirely.
package plan

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Plan section names.
const (
	SectionUser = "User-Defined Tasks"
	SectionOra  = "Ora-Suggested Tasks"
)

// Task statuses.
const (
	StatusPending  = "pending"
	StatusDone     = "done"
	StatusRejected = "rejected"
	StatusPromoted = "promoted"
)

// ErrTaskNotFound reports that no plan task matches the given description.
var ErrTaskNotFound = errors.New("plan task not found")

// Task is one entry in the workstream plan.
type Task struct {
	ID          string // base64 of the trimmed checkbox-line description.
	Description string // Possibly multi-line.
	AddedBy     string // "user" or "ora".
	Status      string
	Source      string
	Context     string
	Section     string // SectionUser or SectionOra.
	PromotedTo  string // Loop id the task was promoted into.
}

var (
	sectionHeaderRe = regexp.MustCompile(`^### (User-Defined Tasks|Ora-Suggested Tasks)\s*$`)
	checkboxLineRe  = regexp.MustCompile(`^- \[([ x])\] (.*)$`)
	metadataLineRe  = regexp.MustCompile("^\\s+`([a-z_]+): (.*)`\\s*$")
)

// Parse walks the plan content and returns its tasks in document order.
// Multiple headers with the same section name are all honored: tasks keep
// being tagged with whichever section header was seen most recently.
func Parse(content string) []Task {
	lines := strings.Split(content, "\n")

	var (
		tasks          []Task
		currentSection string
	)

	idx := 0
	for idx < len(lines) {
		line := lines[idx]

		if match := sectionHeaderRe.FindStringSubmatch(line); match != nil {
			currentSection = match[1]
			idx++

			continue
		}

		match := checkboxLineRe.FindStringSubmatch(line)
		if match == nil {
			idx++

			continue
		}

		task, next := parseTask(lines, idx, match, currentSection)
		tasks = append(tasks, task)
		idx = next
	}

	return tasks
}

// parseTask builds one task from a checkbox line plus bounded lookahead over
// metadata and continuation lines. It returns the task and the index of the
// first unconsumed line.
func parseTask(lines []string, start int, match []string, section string) (Task, int) {
	description := strings.TrimSpace(match[2])

	task := Task{
		ID:          base64.StdEncoding.EncodeToString([]byte(description)),
		Description: description,
		AddedBy:     defaultAddedBy(section),
		Status:      StatusPending,
		Source:      "plan",
		Section:     section,
	}

	if match[1] == "x" {
		task.Status = StatusDone
	}

	idx := start + 1
	for idx < len(lines) {
		line := lines[idx]

		// Lookahead stops at the next task, a new section, or a separator.
		if checkboxLineRe.MatchString(line) || sectionHeaderRe.MatchString(line) ||
			strings.TrimSpace(line) == "---" {
			break
		}

		if meta := metadataLineRe.FindStringSubmatch(line); meta != nil {
			applyMetadata(&task, meta[1], meta[2])
			idx++

			continue
		}

		if trimmed := strings.TrimSpace(line); trimmed != "" {
			task.Description += "\n" + trimmed
		}

		idx++
	}

	return task, idx
}

func defaultAddedBy(section string) string {
	if section == SectionOra {
		return "ora"
	}

	return "user"
}

func applyMetadata(task *Task, key, value string) {
	value = strings.TrimSpace(value)

	switch key {
	case "added_by":
		task.AddedBy = value
	case "source":
		task.Source = value
	case "context":
		task.Context = value
	case "status":
		task.Status = value
	case "promoted_to":
		task.PromotedTo = value
	}
}

// Stringify renders tasks back into the canonical plan shape. A leading
// frontmatter block in existingContent is preserved verbatim; everything else
// about the input layout is discarded. Rejected tasks are dropped, not kept as
// tombstones.
func Stringify(tasks []Task, existingContent string) string {
	var builder strings.Builder

	if front, ok := leadingFrontmatter(existingContent); ok {
		builder.WriteString(front)
		builder.WriteString("\n")
	}

	writeSection(&builder, SectionUser, tasks)
	builder.WriteString("\n")
	writeSection(&builder, SectionOra, tasks)

	return builder.String()
}

func writeSection(builder *strings.Builder, section string, tasks []Task) {
	fmt.Fprintf(builder, "### %s\n\n", section)

	for _, task := range tasks {
		if task.Section != section || task.Status == StatusRejected {
			continue
		}

		writeTask(builder, task)
	}
}

func writeTask(builder *strings.Builder, task Task) {
	descLines := strings.Split(task.Description, "\n")

	checkbox := " "
	if task.Status == StatusDone {
		checkbox = "x"
	}

	fmt.Fprintf(builder, "- [%s] %s\n", checkbox, descLines[0])

	for _, line := range descLines[1:] {
		fmt.Fprintf(builder, "  %s\n", line)
	}

	fmt.Fprintf(builder, "  `added_by: %s`\n", task.AddedBy)
	fmt.Fprintf(builder, "  `source: %s`\n", task.Source)

	if task.Context != "" {
		fmt.Fprintf(builder, "  `context: %s`\n", task.Context)
	}

	if task.PromotedTo != "" {
		fmt.Fprintf(builder, "  `promoted_to: %s`\n", task.PromotedTo)
	}

	if task.Status == StatusPromoted {
		builder.WriteString("  `status: promoted`\n")
	}

	builder.WriteString("\n")
}

// leadingFrontmatter returns the verbatim frontmatter block (delimiters and
// trailing newline included) when content starts with one.
func leadingFrontmatter(content string) (string, bool) {
	if !strings.HasPrefix(content, "---\n") {
		return "", false
	}

	end := strings.Index(content[4:], "\n---")
	if end == -1 {
		return "", false
	}

	// Include the closing delimiter line.
	stop := 4 + end + len("\n---")
	if stop < len(content) && content[stop] == '\n' {
		stop++
	}

	return content[:stop], true
}

// Find returns the first task whose trimmed description matches, honoring the
// same exact-text identity the rest of the system uses.
func Find(tasks []Task, description string) (int, bool) {
	needle := strings.TrimSpace(description)

	for idx, task := range tasks {
		if strings.TrimSpace(task.Description) == needle ||
			firstLine(task.Description) == needle {
			return idx, true
		}
	}

	return -1, false
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")

	return strings.TrimSpace(line)
}
