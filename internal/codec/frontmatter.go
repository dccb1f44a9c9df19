package codec

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/starford/raido/internal/models"
)

// ParseDocument parses artifact file text into a Document. It never
// fails: input without frontmatter, without a closing delimiter, or
// with garbage lines yields a document with whatever could be
// recovered. When the closing delimiter is missing, the remainder of
// the input is still scanned for key/value lines.
func ParseDocument(text string) *Document {
	d := &Document{}
	lines := strings.Split(text, "\n")

	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}

	bodyStart := 0
	if i < len(lines) && strings.TrimSpace(lines[i]) == "---" {
		bodyStart = parseFrontmatter(d, lines, i+1)
	}

	parseBody(d, lines[bodyStart:])
	return d
}

// parseFrontmatter consumes key/value lines starting at index i and
// returns the index of the first body line (after the closing
// delimiter, or len(lines) when it is absent).
func parseFrontmatter(d *Document, lines []string, i int) int {
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "---" {
			return i + 1
		}

		key, rest, ok := splitKeyValue(line)
		if !ok {
			// Not a key/value line (stray text, mis-indented item): skip.
			i++
			continue
		}

		switch {
		case rest == "":
			// Block list follows on the next lines.
			value, next := parseBlockList(lines, i+1)
			d.Frontmatter = append(d.Frontmatter, Entry{Key: key, Value: value})
			i = next
		case rest == "[]":
			d.Frontmatter = append(d.Frontmatter, Entry{Key: key, Value: []string{}})
			i++
		case strings.HasPrefix(rest, "[") && strings.HasSuffix(rest, "]"):
			// JSON-array-literal encoding, accepted on parse.
			d.Frontmatter = append(d.Frontmatter, Entry{Key: key, Value: parseJSONList(rest)})
			i++
		default:
			d.Frontmatter = append(d.Frontmatter, Entry{Key: key, Value: parseScalar(rest)})
			i++
		}
	}
	return len(lines)
}

// splitKeyValue splits a top-level "key: value" line. The key must
// start in column zero and contain no whitespace.
func splitKeyValue(line string) (key, rest string, ok bool) {
	if line == "" || line[0] == ' ' || line[0] == '\t' || line[0] == '#' {
		return "", "", false
	}
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key = line[:idx]
	if strings.ContainsAny(key, " \t\"") {
		return "", "", false
	}
	return key, strings.TrimSpace(line[idx+1:]), true
}

// parseBlockList reads "  - item" lines starting at i. Items are either
// scalar strings or attribute maps ("- attributeId: ..." followed by a
// deeper-indented "value: ..." line). Returns the parsed list and the
// index of the first line after it.
func parseBlockList(lines []string, i int) (any, int) {
	var strs []string
	var attrs []models.CustomAttribute

	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if len(line) == 0 || (line[0] != ' ' && line[0] != '\t') || !strings.HasPrefix(trimmed, "- ") {
			break
		}
		item := strings.TrimSpace(trimmed[2:])

		if k, v, ok := splitKeyValue(item); ok {
			// Map item: collect continuation lines indented deeper than
			// the "- " marker.
			attr := models.CustomAttribute{}
			setAttrField(&attr, k, parseScalar(v))
			indent := indentOf(line)
			i++
			for i < len(lines) {
				cont := lines[i]
				contTrim := strings.TrimSpace(cont)
				if contTrim == "" || indentOf(cont) <= indent || strings.HasPrefix(contTrim, "- ") {
					break
				}
				if ck, cv, cok := splitKeyValue(contTrim); cok {
					setAttrField(&attr, ck, parseScalar(cv))
				}
				i++
			}
			attrs = append(attrs, attr)
			continue
		}

		strs = append(strs, cast.ToString(parseScalar(item)))
		i++
	}

	if len(attrs) > 0 {
		return attrs, i
	}
	if strs == nil {
		strs = []string{}
	}
	return strs, i
}

func setAttrField(a *models.CustomAttribute, key string, v any) {
	switch key {
	case "attributeId":
		a.AttributeID = cast.ToString(v)
	case "value":
		a.Value = v
	}
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// parseJSONList parses a JSON-array literal like ["a","b"] into a
// string list. Unparseable input yields an empty list.
func parseJSONList(s string) []string {
	var raw []any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, cast.ToString(v))
	}
	return out
}

// parseScalar types an unquoted or quoted scalar: quoted strings are
// unescaped; unquoted true/false become booleans; numeric-looking
// values become numbers; everything else is a string.
func parseScalar(s string) any {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return unescape(s[1 : len(s)-1])
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// parseBody extracts the H1 title and H2 sections. Section bodies run
// from the line after the heading to the next H2 heading (or end of
// input). Only the blank-line framing Render emits is stripped, so
// horizontal whitespace at the body edges survives a round trip; a body
// that itself starts or ends with blank lines loses them (they are
// indistinguishable from the framing).
func parseBody(d *Document, lines []string) {
	flush := func(heading string, body []string) {
		if heading == "" {
			return
		}
		d.Sections = append(d.Sections, Section{
			Heading: heading,
			Body:    strings.Trim(strings.Join(body, "\n"), "\n"),
		})
	}

	var heading string
	var body []string
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "## "):
			flush(heading, body)
			heading = strings.TrimSpace(line[3:])
			body = nil
		case heading == "" && d.Title == "" && strings.HasPrefix(line, "# "):
			d.Title = strings.TrimSpace(line[2:])
		case heading != "":
			body = append(body, line)
		}
	}
	flush(heading, body)
}
