// Package codec converts artifact records to and from their on-disk
// Markdown form: a YAML frontmatter block followed by an H1 title and
// named H2 sections. Rendering is deterministic (fixed key order, stable
// quoting) and parsing is lenient: malformed input degrades to a
// document with defaulted fields, it never fails.
package codec

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/starford/raido/internal/models"
)

// Entry is one frontmatter key/value pair. Value is a string, int64,
// float64, bool, []string, or []models.CustomAttribute.
type Entry struct {
	Key   string
	Value any
}

// Section is one H2-delimited body section.
type Section struct {
	Heading string
	Body    string
}

// Document is the structured form of an artifact file: ordered
// frontmatter entries, the H1 title, and ordered body sections.
type Document struct {
	Frontmatter []Entry
	Title       string
	Sections    []Section
}

// Render serializes the document. It is a pure function of the document:
// the same document always renders to byte-identical output.
func (d *Document) Render() string {
	var b strings.Builder
	b.WriteString("---\n")
	for _, e := range d.Frontmatter {
		renderEntry(&b, e)
	}
	b.WriteString("---\n")
	b.WriteString("\n# ")
	b.WriteString(d.Title)
	b.WriteString("\n")
	for _, s := range d.Sections {
		b.WriteString("\n## ")
		b.WriteString(s.Heading)
		b.WriteString("\n")
		if s.Body != "" {
			b.WriteString("\n")
			b.WriteString(s.Body)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderEntry(b *strings.Builder, e Entry) {
	switch v := e.Value.(type) {
	case []string:
		if len(v) == 0 {
			b.WriteString(e.Key + ": []\n")
			return
		}
		b.WriteString(e.Key + ":\n")
		for _, item := range v {
			b.WriteString("  - \"" + escape(item) + "\"\n")
		}
	case []models.CustomAttribute:
		if len(v) == 0 {
			b.WriteString(e.Key + ": []\n")
			return
		}
		b.WriteString(e.Key + ":\n")
		for _, a := range v {
			b.WriteString("  - attributeId: \"" + escape(a.AttributeID) + "\"\n")
			b.WriteString("    value: " + renderScalar(a.Value) + "\n")
		}
	default:
		b.WriteString(e.Key + ": " + renderScalar(e.Value) + "\n")
	}
}

// renderScalar renders a scalar value: strings quoted and escaped,
// numbers and booleans unquoted.
func renderScalar(v any) string {
	switch t := v.(type) {
	case string:
		return "\"" + escape(t) + "\""
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return "\"" + escape(cast.ToString(t)) + "\""
	}
}

// escape makes a string safe for a double-quoted scalar: backslash
// first, then double-quote, then newline.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// unescape reverses escape.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(c)
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Get returns the frontmatter value for key.
func (d *Document) Get(key string) (any, bool) {
	for _, e := range d.Frontmatter {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value for key in place, or appends a new entry when
// the key is absent. Position is preserved so re-rendering an edited
// document keeps its key order.
func (d *Document) Set(key string, v any) {
	for i, e := range d.Frontmatter {
		if e.Key == key {
			d.Frontmatter[i].Value = v
			return
		}
	}
	d.Frontmatter = append(d.Frontmatter, Entry{Key: key, Value: v})
}

// Str returns the string value for key, or def when the key is absent.
func (d *Document) Str(key, def string) string {
	v, ok := d.Get(key)
	if !ok {
		return def
	}
	if s, isStr := v.(string); isStr {
		return s
	}
	return cast.ToString(v)
}

// Int returns the integer value for key, or def when absent.
func (d *Document) Int(key string, def int64) int64 {
	v, ok := d.Get(key)
	if !ok {
		return def
	}
	return cast.ToInt64(v)
}

// Bool returns the boolean value for key; absent keys are false.
func (d *Document) Bool(key string) bool {
	v, ok := d.Get(key)
	if !ok {
		return false
	}
	return cast.ToBool(v)
}

// StrList returns the string-list value for key. Absent or non-list
// values yield an empty (non-nil) slice.
func (d *Document) StrList(key string) []string {
	v, ok := d.Get(key)
	if !ok {
		return []string{}
	}
	switch t := v.(type) {
	case []string:
		if t == nil {
			return []string{}
		}
		return t
	case []models.CustomAttribute:
		return []string{}
	default:
		return []string{}
	}
}

// Attrs returns the custom-attribute list for key. Absent or non-list
// values yield an empty (non-nil) slice.
func (d *Document) Attrs(key string) []models.CustomAttribute {
	v, ok := d.Get(key)
	if !ok {
		return []models.CustomAttribute{}
	}
	if a, isAttrs := v.([]models.CustomAttribute); isAttrs && a != nil {
		return a
	}
	return []models.CustomAttribute{}
}

// Section returns the body of the named H2 section, or "" when the
// section is missing.
func (d *Document) Section(heading string) string {
	for _, s := range d.Sections {
		if s.Heading == heading {
			return s.Body
		}
	}
	return ""
}

// addStr, addInt, addBool, addList, addAttrs build frontmatter in
// declaration order for the typed encoders.
func (d *Document) addStr(key, v string)  { d.Frontmatter = append(d.Frontmatter, Entry{key, v}) }
func (d *Document) addInt(key string, v int64) {
	d.Frontmatter = append(d.Frontmatter, Entry{key, v})
}
func (d *Document) addBool(key string, v bool) {
	d.Frontmatter = append(d.Frontmatter, Entry{key, v})
}
func (d *Document) addList(key string, v []string) {
	if v == nil {
		v = []string{}
	}
	d.Frontmatter = append(d.Frontmatter, Entry{key, v})
}
func (d *Document) addAttrs(key string, v []models.CustomAttribute) {
	if v == nil {
		v = []models.CustomAttribute{}
	}
	d.Frontmatter = append(d.Frontmatter, Entry{key, v})
}
func (d *Document) addSection(heading, body string) {
	d.Sections = append(d.Sections, Section{Heading: heading, Body: body})
}
