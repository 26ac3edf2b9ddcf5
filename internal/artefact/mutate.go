package artefact

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Mutation precondition failures. Parsing degrades silently; mutations are
// explicit user-intended state changes and fail loud instead, so callers never
// persist a write whose anchor was missing.
var (
	ErrTaskNotFound = errors.New("task not found")
)

var (
	execLogHeaderRe     = regexp.MustCompile(`(?m)^##[^\n]*Execution Log[^\n]*$`)
	memoryHeaderRe      = regexp.MustCompile(`(?m)^##[^\n]*Memory Trace[^\n]*$`)
	nextTopSectionRe    = regexp.MustCompile(`(?m)^## `)
	tasksHeaderAnchorRe = regexp.MustCompile(`(?m)^##\s+(?:[^\s#]+\s+)?Tasks\s*$`)
)

// MarkTaskComplete flips the first `- [ ] {description}` checklist line to its
// completed form, leaving every other byte of the document untouched. Returns
// ErrTaskNotFound when no unchecked line with that exact description exists;
// an already-completed line does not match.
func MarkTaskComplete(body, description string) (string, error) {
	pending := "- [ ] " + description

	idx := lineStartIndex(body, pending)
	if idx == -1 {
		return "", fmt.Errorf("%w: %q", ErrTaskNotFound, description)
	}

	return body[:idx] + "- [x] " + description + body[idx+len(pending):], nil
}

// lineStartIndex finds needle at the start of a line. Descriptions can contain
// regex metacharacters, so matching is plain byte comparison.
func lineStartIndex(body, needle string) int {
	if strings.HasPrefix(body, needle) {
		return 0
	}

	idx := strings.Index(body, "\n"+needle)
	if idx == -1 {
		return -1
	}

	return idx + 1
}

// AppendExecutionLogEntry appends entry to the end of the Execution Log
// section, bounded by the next ## header. When the document has no such
// header, a fresh one is appended to the end of the body first.
func AppendExecutionLogEntry(body, entry string) string {
	header := execLogHeaderRe.FindStringIndex(body)
	if header == nil {
		return appendSection(body, HeaderExecLog, entry)
	}

	boundary := sectionBoundary(body, header[1])

	head := strings.TrimRight(body[:boundary], " \n")
	tail := body[boundary:]

	out := head + "\n\n" + entry + "\n"
	if tail != "" {
		out += "\n"
	}

	return out + tail
}

// AppendMemoryTrace inserts a fenced json:memory block directly after the
// Memory Trace header. When the header is missing it is created at the end of
// the body with the block right after it.
func AppendMemoryTrace(body, block string) string {
	header := memoryHeaderRe.FindStringIndex(body)
	if header == nil {
		return appendSection(body, HeaderMemoryTrace, block)
	}

	return body[:header[1]] + "\n\n" + block + body[header[1]:]
}

// AppendTask appends a pending checklist line to the end of the Tasks section,
// creating the section when absent. Used when a plan task is promoted into a
// loop.
func AppendTask(body, description string) string {
	line := "- [ ] " + description

	header := tasksHeaderAnchorRe.FindStringIndex(body)
	if header == nil {
		return appendSection(body, HeaderTasks, line)
	}

	boundary := sectionBoundary(body, header[1])

	head := strings.TrimRight(body[:boundary], " \n")
	tail := body[boundary:]

	out := head + "\n" + line + "\n"
	if tail != "" {
		out += "\n"
	}

	return out + tail
}

// sectionBoundary returns the index of the next ## header at or after from,
// or the end of the body.
func sectionBoundary(body string, from int) int {
	next := nextTopSectionRe.FindStringIndex(body[from:])
	if next == nil {
		return len(body)
	}

	return from + next[0]
}

func appendSection(body, header, content string) string {
	trimmed := strings.TrimRight(body, " \n")
	if trimmed == "" {
		return header + "\n\n" + content + "\n"
	}

	return trimmed + "\n\n" + header + "\n\n" + content + "\n"
}
