package artefact

import (
	"regexp"
	"strings"
)

var headerLineRe = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*$`)

// Sections is an insertion-ordered map from canonical section key to the raw
// section text (header line included).
type Sections struct {
	keys     []string
	sections map[string]string
}

// Get returns the raw text of the section with the given canonical key.
func (s *Sections) Get(key string) (string, bool) {
	text, ok := s.sections[key]

	return text, ok
}

// Keys returns the section keys in document order.
func (s *Sections) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)

	return out
}

// Len returns the number of sections.
func (s *Sections) Len() int {
	return len(s.keys)
}

func (s *Sections) add(key, text string) {
	if s.sections == nil {
		s.sections = make(map[string]string)
	}

	if _, exists := s.sections[key]; !exists {
		s.keys = append(s.keys, key)
	}

	s.sections[key] = text
}

// SplitSections segments a document body into sections. Each markdown header
// line closes the previous section and opens a new one keyed by SectionKey.
// Lines before the first header are discarded.
func SplitSections(body string) *Sections {
	out := &Sections{sections: make(map[string]string)}

	var (
		currentKey   string
		currentLines []string
	)

	flush := func() {
		if currentKey == "" {
			return
		}

		out.add(currentKey, strings.Join(currentLines, "\n"))
		currentKey = ""
		currentLines = nil
	}

	for _, line := range strings.Split(body, "\n") {
		match := headerLineRe.FindStringSubmatch(line)
		if match != nil {
			flush()

			currentKey = SectionKey(match[2])
			currentLines = []string{line}

			continue
		}

		if currentKey != "" {
			currentLines = append(currentLines, line)
		}
	}

	flush()

	return out
}

// Canonical section keys.
const (
	KeyPurpose     = "purpose"
	KeyObjectives  = "objectives"
	KeyTasks       = "tasks"
	KeyExecLog     = "executionLog"
	KeyMemoryTrace = "memoryTrace"
)

// SectionKey derives the canonical key for a header text. Derivation is a pure
// function of the header text: keyword matching first, then a sanitized slug
// of the text itself for anything unrecognized.
func SectionKey(headerText string) string {
	lower := strings.ToLower(headerText)

	switch {
	case strings.Contains(lower, "purpose"):
		return KeyPurpose
	case strings.Contains(lower, "objective"):
		return KeyObjectives
	case strings.Contains(lower, "task"):
		return KeyTasks
	case strings.Contains(lower, "execution"), strings.Contains(lower, "log"):
		return KeyExecLog
	case strings.Contains(lower, "memory"), strings.Contains(lower, "trace"):
		return KeyMemoryTrace
	}

	return slug(headerText)
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// slug lowercases the text and collapses every run of non-alphanumeric
// characters (emoji included) into a single hyphen.
func slug(text string) string {
	s := nonSlugRe.ReplaceAllString(strings.ToLower(text), "-")

	return strings.Trim(s, "-")
}
