package codec

import (
	"fmt"
	"strconv"

	"github.com/starford/raido/internal/models"
)

// Decode parses text as the given kind and returns the typed record.
// Unknown kinds return nil.
func Decode(kind models.Kind, text string) any {
	switch kind {
	case models.KindRequirement:
		return DecodeRequirement(text)
	case models.KindUseCase:
		return DecodeUseCase(text)
	case models.KindTestCase:
		return DecodeTestCase(text)
	case models.KindInformation:
		return DecodeInformation(text)
	case models.KindRisk:
		return DecodeRisk(text)
	case models.KindDocument:
		return DecodeDocument(text)
	case models.KindLink:
		return DecodeLink(text)
	case models.KindProject:
		return DecodeProject(text)
	case models.KindUser:
		return DecodeUser(text)
	default:
		return nil
	}
}

// Meta is the kind-independent catalog view of an artifact file.
type Meta struct {
	ID        string
	Title     string
	Status    string
	Priority  string
	Revision  string
	IsDeleted bool
	// Related holds outgoing artifact-id references collected from every
	// relationship field present in the frontmatter, deduplicated in
	// first-seen order.
	Related []string
}

// relationKeys are the frontmatter keys carrying artifact-id arrays.
var relationKeys = []string{"useCaseIds", "parentIds", "requirementIds", "linkedArtifacts"}

// ExtractMeta parses artifact text and returns its catalog metadata.
func ExtractMeta(text string) Meta {
	d := ParseDocument(text)
	m := Meta{
		ID:        d.Str("id", ""),
		Title:     d.Str("title", ""),
		Status:    d.Str("status", DefaultStatus),
		Priority:  d.Str("priority", DefaultPriority),
		Revision:  d.Str("revision", DefaultRevision),
		IsDeleted: d.Bool("isDeleted"),
	}
	if m.Title == "" {
		m.Title = d.Str("name", "")
	}

	seen := make(map[string]struct{})
	add := func(id string) {
		if id == "" {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		m.Related = append(m.Related, id)
	}
	for _, key := range relationKeys {
		for _, id := range d.StrList(key) {
			add(id)
		}
	}
	// Link records reference both endpoints as scalars.
	add(d.Str("sourceId", ""))
	add(d.Str("targetId", ""))

	return m
}

// BumpRevision increments a two-digit revision counter ("01" -> "02").
// Unparseable input restarts at the default.
func BumpRevision(rev string) string {
	n, err := strconv.Atoi(rev)
	if err != nil || n < 1 {
		return DefaultRevision
	}
	return fmt.Sprintf("%02d", n+1)
}
