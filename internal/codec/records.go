package codec

import "github.com/starford/raido/internal/models"

// EncodeInformation renders an information note to its file form.
func EncodeInformation(n models.Information) string {
	d := &Document{Title: n.Title}
	d.addStr("id", n.ID)
	d.addStr("title", n.Title)
	d.addStr("category", n.Category)
	d.addStr("author", n.Author)
	d.addStr("revision", n.Revision)
	d.addInt("dateCreated", n.DateCreated)
	d.addInt("lastModified", n.LastModified)
	if n.IsDeleted {
		d.addBool("isDeleted", true)
		d.addInt("deletedAt", n.DeletedAt)
	}
	d.addList("linkedArtifacts", n.LinkedArtifacts)
	d.addSection("Content", n.Content)
	return d.Render()
}

// DecodeInformation parses an information note with defaults.
func DecodeInformation(text string) models.Information {
	d := ParseDocument(text)
	return models.Information{
		ID:              d.Str("id", ""),
		Title:           d.Str("title", ""),
		Category:        d.Str("category", ""),
		Author:          d.Str("author", ""),
		Revision:        d.Str("revision", DefaultRevision),
		DateCreated:     d.Int("dateCreated", 0),
		LastModified:    d.Int("lastModified", 0),
		IsDeleted:       d.Bool("isDeleted"),
		DeletedAt:       d.Int("deletedAt", 0),
		LinkedArtifacts: d.StrList("linkedArtifacts"),
		Content:         d.Section("Content"),
	}
}

// EncodeRisk renders a risk to its file form.
func EncodeRisk(r models.Risk) string {
	d := &Document{Title: r.Title}
	d.addStr("id", r.ID)
	d.addStr("title", r.Title)
	d.addStr("status", r.Status)
	d.addStr("probability", r.Probability)
	d.addStr("impact", r.Impact)
	d.addStr("author", r.Author)
	d.addStr("revision", r.Revision)
	d.addInt("dateCreated", r.DateCreated)
	d.addInt("lastModified", r.LastModified)
	if r.IsDeleted {
		d.addBool("isDeleted", true)
		d.addInt("deletedAt", r.DeletedAt)
	}
	d.addList("linkedArtifacts", r.LinkedArtifacts)
	d.addSection("Description", r.Description)
	d.addSection("Mitigation", r.Mitigation)
	return d.Render()
}

// DecodeRisk parses a risk with defaults.
func DecodeRisk(text string) models.Risk {
	d := ParseDocument(text)
	return models.Risk{
		ID:              d.Str("id", ""),
		Title:           d.Str("title", ""),
		Status:          d.Str("status", DefaultStatus),
		Probability:     d.Str("probability", ""),
		Impact:          d.Str("impact", ""),
		Author:          d.Str("author", ""),
		Revision:        d.Str("revision", DefaultRevision),
		DateCreated:     d.Int("dateCreated", 0),
		LastModified:    d.Int("lastModified", 0),
		IsDeleted:       d.Bool("isDeleted"),
		DeletedAt:       d.Int("deletedAt", 0),
		LinkedArtifacts: d.StrList("linkedArtifacts"),
		Description:     d.Section("Description"),
		Mitigation:      d.Section("Mitigation"),
	}
}

// EncodeDocument renders a project document to its file form.
func EncodeDocument(doc models.Document) string {
	d := &Document{Title: doc.Title}
	d.addStr("id", doc.ID)
	d.addStr("title", doc.Title)
	d.addStr("status", doc.Status)
	d.addStr("author", doc.Author)
	d.addStr("revision", doc.Revision)
	d.addInt("dateCreated", doc.DateCreated)
	d.addInt("lastModified", doc.LastModified)
	if doc.IsDeleted {
		d.addBool("isDeleted", true)
		d.addInt("deletedAt", doc.DeletedAt)
	}
	d.addSection("Description", doc.Description)
	d.addSection("Content", doc.Content)
	return d.Render()
}

// DecodeDocument parses a project document with defaults.
func DecodeDocument(text string) models.Document {
	d := ParseDocument(text)
	return models.Document{
		ID:           d.Str("id", ""),
		Title:        d.Str("title", ""),
		Status:       d.Str("status", DefaultStatus),
		Author:       d.Str("author", ""),
		Revision:     d.Str("revision", DefaultRevision),
		DateCreated:  d.Int("dateCreated", 0),
		LastModified: d.Int("lastModified", 0),
		IsDeleted:    d.Bool("isDeleted"),
		DeletedAt:    d.Int("deletedAt", 0),
		Description:  d.Section("Description"),
		Content:      d.Section("Content"),
	}
}

// EncodeLink renders an artifact relationship to its file form.
func EncodeLink(l models.Link) string {
	d := &Document{Title: l.ID}
	d.addStr("id", l.ID)
	d.addStr("sourceId", l.SourceID)
	d.addStr("targetId", l.TargetID)
	d.addStr("type", l.Type)
	d.addStr("revision", l.Revision)
	d.addInt("dateCreated", l.DateCreated)
	d.addInt("lastModified", l.LastModified)
	if l.IsDeleted {
		d.addBool("isDeleted", true)
		d.addInt("deletedAt", l.DeletedAt)
	}
	d.addSection("Description", l.Description)
	return d.Render()
}

// DecodeLink parses an artifact relationship with defaults.
func DecodeLink(text string) models.Link {
	d := ParseDocument(text)
	return models.Link{
		ID:           d.Str("id", ""),
		SourceID:     d.Str("sourceId", ""),
		TargetID:     d.Str("targetId", ""),
		Type:         d.Str("type", ""),
		Revision:     d.Str("revision", DefaultRevision),
		DateCreated:  d.Int("dateCreated", 0),
		LastModified: d.Int("lastModified", 0),
		IsDeleted:    d.Bool("isDeleted"),
		DeletedAt:    d.Int("deletedAt", 0),
		Description:  d.Section("Description"),
	}
}

// EncodeProject renders project metadata to its file form.
func EncodeProject(p models.Project) string {
	d := &Document{Title: p.Name}
	d.addStr("id", p.ID)
	d.addStr("name", p.Name)
	d.addStr("author", p.Author)
	d.addStr("revision", p.Revision)
	d.addInt("dateCreated", p.DateCreated)
	d.addInt("lastModified", p.LastModified)
	if p.IsDeleted {
		d.addBool("isDeleted", true)
		d.addInt("deletedAt", p.DeletedAt)
	}
	d.addSection("Description", p.Description)
	return d.Render()
}

// DecodeProject parses project metadata with defaults.
func DecodeProject(text string) models.Project {
	d := ParseDocument(text)
	return models.Project{
		ID:           d.Str("id", ""),
		Name:         d.Str("name", ""),
		Author:       d.Str("author", ""),
		Revision:     d.Str("revision", DefaultRevision),
		DateCreated:  d.Int("dateCreated", 0),
		LastModified: d.Int("lastModified", 0),
		IsDeleted:    d.Bool("isDeleted"),
		DeletedAt:    d.Int("deletedAt", 0),
		Description:  d.Section("Description"),
	}
}

// EncodeUser renders a user record to its file form.
func EncodeUser(u models.User) string {
	d := &Document{Title: u.Name}
	d.addStr("id", u.ID)
	d.addStr("name", u.Name)
	d.addStr("email", u.Email)
	d.addStr("role", u.Role)
	d.addStr("revision", u.Revision)
	d.addInt("dateCreated", u.DateCreated)
	d.addInt("lastModified", u.LastModified)
	if u.IsDeleted {
		d.addBool("isDeleted", true)
		d.addInt("deletedAt", u.DeletedAt)
	}
	return d.Render()
}

// DecodeUser parses a user record with defaults.
func DecodeUser(text string) models.User {
	d := ParseDocument(text)
	return models.User{
		ID:           d.Str("id", ""),
		Name:         d.Str("name", ""),
		Email:        d.Str("email", ""),
		Role:         d.Str("role", ""),
		Revision:     d.Str("revision", DefaultRevision),
		DateCreated:  d.Int("dateCreated", 0),
		LastModified: d.Int("lastModified", 0),
		IsDeleted:    d.Bool("isDeleted"),
		DeletedAt:    d.Int("deletedAt", 0),
	}
}
