// Package artefact implements the document model for loop and phase markdown
// files: the frontmatter codec, section splitting, schema validation, checklist
// extraction, and the anchored text mutations used to rewrite documents in
// place.
//
// The frontmatter grammar is intentionally a restricted YAML subset so that
// parsing stays deterministic and Encode can reproduce Decode output exactly:
//
//	---
//	uuid: abc123
//	title: Fix the importer
//	tags: [infra, importer]
//	score: 3
//	routed: true
//	summary: |
//	  First line.
//	  Second line.
//	---
//
// Scalars are bare or quoted strings, numbers (`^\d+(\.\d+)?$`), or booleans.
// Arrays use the inline `[a, b]` form only. A bare `|` value starts a
// block literal continued on two-space-indented lines.
//
// Decode never fails: input that does not open with a `---` line, or opens one
// and never closes it, is treated as a document without frontmatter.
package artefact

import (
	"regexp"
	"strconv"
	"strings"
)

// Delimiter is the frontmatter fence line.
const Delimiter = "---"

// ValueKind distinguishes the supported frontmatter value shapes.
type ValueKind uint8

// ValueKind values enumerate the supported shapes.
const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBool
	ValueList
	ValueLiteral // multi-line block literal ("key: |")
)

// Value is a decoded frontmatter value.
type Value struct {
	Kind   ValueKind
	String string   // String holds the value for ValueString and ValueLiteral.
	Number float64  // Number holds the value for ValueNumber.
	Bool   bool     // Bool holds the value for ValueBool.
	List   []string // List holds the value for ValueList.
}

// StringValue creates a string Value.
func StringValue(s string) Value {
	return Value{Kind: ValueString, String: s}
}

// NumberValue creates a numeric Value.
func NumberValue(n float64) Value {
	return Value{Kind: ValueNumber, Number: n}
}

// BoolValue creates a boolean Value.
func BoolValue(b bool) Value {
	return Value{Kind: ValueBool, Bool: b}
}

// ListValue creates a string-array Value.
func ListValue(items []string) Value {
	return Value{Kind: ValueList, List: items}
}

// LiteralValue creates a multi-line block-literal Value.
func LiteralValue(s string) Value {
	return Value{Kind: ValueLiteral, String: s}
}

// Metadata is an insertion-ordered frontmatter field map. The zero value is
// ready to use.
type Metadata struct {
	keys   []string
	values map[string]Value
}

// NewMetadata creates an empty metadata map.
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]Value)}
}

// Set stores a value, preserving first-insertion key order.
func (m *Metadata) Set(key string, value Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}

	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}

	m.values[key] = value
}

// Get returns the value for key.
func (m *Metadata) Get(key string) (Value, bool) {
	v, ok := m.values[key]

	return v, ok
}

// Keys returns the field names in insertion order.
func (m *Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)

	return out
}

// Len returns the number of fields.
func (m *Metadata) Len() int {
	return len(m.keys)
}

// GetString returns the string value for key.
// Returns ("", false) if key is missing or not a string or literal.
func (m *Metadata) GetString(key string) (string, bool) {
	v, ok := m.values[key]
	if !ok || (v.Kind != ValueString && v.Kind != ValueLiteral) {
		return "", false
	}

	return v.String, true
}

// GetNumber returns the numeric value for key.
func (m *Metadata) GetNumber(key string) (float64, bool) {
	v, ok := m.values[key]
	if !ok || v.Kind != ValueNumber {
		return 0, false
	}

	return v.Number, true
}

// GetList returns the string array for key.
func (m *Metadata) GetList(key string) ([]string, bool) {
	v, ok := m.values[key]
	if !ok || v.Kind != ValueList {
		return nil, false
	}

	return v.List, true
}

var numberRe = regexp.MustCompile(`^\d+(\.\d+)?$`)

const literalIndent = "  "

// Decode splits a raw document into frontmatter metadata and body.
//
// If raw does not begin with a delimiter line, or the opened block is never
// closed, the metadata is empty and the entire input is returned as body.
// Lines inside the block that do not look like "key: value" are skipped.
func Decode(raw string) (*Metadata, string) {
	meta := NewMetadata()

	lines := strings.Split(raw, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != Delimiter {
		return meta, raw
	}

	closing := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == Delimiter {
			closing = i

			break
		}
	}

	if closing == -1 {
		// Opened but never closed: not a frontmatter block.
		return NewMetadata(), raw
	}

	idx := 1
	for idx < closing {
		line := lines[idx]

		key, rest, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) == "" || strings.HasPrefix(line, " ") {
			idx++

			continue
		}

		value := strings.TrimSpace(rest)

		if value == "|" {
			literal, next := decodeLiteral(lines, idx+1, closing)
			meta.Set(strings.TrimSpace(key), LiteralValue(literal))
			idx = next

			continue
		}

		meta.Set(strings.TrimSpace(key), decodeScalar(value))
		idx++
	}

	body := strings.Join(lines[closing+1:], "\n")

	// Encode writes one blank line between the closing delimiter and the
	// body; swallow exactly that one so the pair round-trips.
	body = strings.TrimPrefix(body, "\n")

	return meta, body
}

// decodeLiteral accumulates two-space-indented continuation lines starting at
// start, stopping before stop or at the first line without the indentation.
// It returns the right-trimmed literal and the index of the first unconsumed
// line.
func decodeLiteral(lines []string, start, stop int) (string, int) {
	var collected []string

	idx := start
	for idx < stop && strings.HasPrefix(lines[idx], literalIndent) {
		collected = append(collected, strings.TrimPrefix(lines[idx], literalIndent))
		idx++
	}

	return strings.TrimRight(strings.Join(collected, "\n"), " \n"), idx
}

func decodeScalar(value string) Value {
	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		inner := strings.TrimSpace(value[1 : len(value)-1])
		if inner == "" {
			return ListValue([]string{})
		}

		parts := strings.Split(inner, ",")
		items := make([]string, 0, len(parts))

		for _, part := range parts {
			items = append(items, unquote(strings.TrimSpace(part)))
		}

		return ListValue(items)
	}

	switch value {
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}

	if numberRe.MatchString(value) {
		n, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return NumberValue(n)
		}
	}

	return StringValue(unquote(value))
}

// unquote strips one layer of matching surrounding single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}

	return s
}

// quoteIfNeeded wraps a string scalar in double quotes when writing it bare
// would change how Decode reads it back: padding would be trimmed, and a bare
// `true`, number, `[...]`, `|`, or already-quoted value would decode as a
// different kind.
func quoteIfNeeded(s string) string {
	switch {
	case s == "":
		return `""`
	case s != strings.TrimSpace(s):
		return `"` + s + `"`
	case s == "true", s == "false", s == "|":
		return `"` + s + `"`
	case numberRe.MatchString(s):
		return `"` + s + `"`
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		return `"` + s + `"`
	case s != unquote(s):
		return `"` + s + `"`
	}

	return s
}

// Encode renders metadata and body back into document form. Fields are written
// in insertion order, wrapped in delimiter lines, followed by a blank line and
// the body. Decode(Encode(m, b)) reproduces m and b for any metadata map that
// Decode itself can produce.
func Encode(meta *Metadata, body string) string {
	var builder strings.Builder

	builder.WriteString(Delimiter)
	builder.WriteString("\n")

	for _, key := range meta.keys {
		value := meta.values[key]

		builder.WriteString(key)
		builder.WriteString(":")

		switch value.Kind {
		case ValueString:
			builder.WriteString(" ")
			builder.WriteString(quoteIfNeeded(value.String))
			builder.WriteString("\n")
		case ValueNumber:
			builder.WriteString(" ")
			builder.WriteString(strconv.FormatFloat(value.Number, 'f', -1, 64))
			builder.WriteString("\n")
		case ValueBool:
			if value.Bool {
				builder.WriteString(" true\n")
			} else {
				builder.WriteString(" false\n")
			}
		case ValueList:
			builder.WriteString(" [")
			builder.WriteString(strings.Join(value.List, ", "))
			builder.WriteString("]\n")
		case ValueLiteral:
			builder.WriteString(" |\n")

			for _, line := range strings.Split(value.String, "\n") {
				builder.WriteString(literalIndent)
				builder.WriteString(line)
				builder.WriteString("\n")
			}
		}
	}

	builder.WriteString(Delimiter)
	builder.WriteString("\n\n")
	builder.WriteString(body)

	return builder.String()
}
