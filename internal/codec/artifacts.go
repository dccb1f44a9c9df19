package codec

import "github.com/starford/raido/internal/models"

// Frontmatter defaults applied when a key is absent on parse.
const (
	DefaultStatus   = "draft"
	DefaultPriority = "medium"
	DefaultRevision = "01"
)

// EncodeRequirement renders a requirement to its file form.
func EncodeRequirement(r models.Requirement) string {
	d := &Document{Title: r.Title}
	d.addStr("id", r.ID)
	d.addStr("title", r.Title)
	d.addStr("status", r.Status)
	d.addStr("priority", r.Priority)
	d.addStr("author", r.Author)
	d.addStr("verificationMethod", r.VerificationMethod)
	d.addStr("revision", r.Revision)
	d.addInt("dateCreated", r.DateCreated)
	d.addInt("lastModified", r.LastModified)
	if r.IsDeleted {
		d.addBool("isDeleted", true)
		d.addInt("deletedAt", r.DeletedAt)
	}
	d.addList("useCaseIds", r.UseCaseIDs)
	d.addList("parentIds", r.ParentIDs)
	d.addAttrs("customAttributes", r.CustomAttributes)
	d.addSection("Description", r.Description)
	d.addSection("Requirement Text", r.Text)
	d.addSection("Rationale", r.Rationale)
	d.addSection("Comments", r.Comments)
	return d.Render()
}

// DecodeRequirement parses a requirement, filling defaults for absent
// keys. Never fails: garbage input yields a defaulted record.
func DecodeRequirement(text string) models.Requirement {
	d := ParseDocument(text)
	return models.Requirement{
		ID:                 d.Str("id", ""),
		Title:              d.Str("title", ""),
		Status:             d.Str("status", DefaultStatus),
		Priority:           d.Str("priority", DefaultPriority),
		Author:             d.Str("author", ""),
		VerificationMethod: d.Str("verificationMethod", ""),
		Revision:           d.Str("revision", DefaultRevision),
		DateCreated:        d.Int("dateCreated", 0),
		LastModified:       d.Int("lastModified", 0),
		IsDeleted:          d.Bool("isDeleted"),
		DeletedAt:          d.Int("deletedAt", 0),
		UseCaseIDs:         d.StrList("useCaseIds"),
		ParentIDs:          d.StrList("parentIds"),
		CustomAttributes:   d.Attrs("customAttributes"),
		Description:        d.Section("Description"),
		Text:               d.Section("Requirement Text"),
		Rationale:          d.Section("Rationale"),
		Comments:           d.Section("Comments"),
	}
}

// EncodeUseCase renders a use case to its file form.
func EncodeUseCase(u models.UseCase) string {
	d := &Document{Title: u.Title}
	d.addStr("id", u.ID)
	d.addStr("title", u.Title)
	d.addStr("status", u.Status)
	d.addStr("priority", u.Priority)
	d.addStr("author", u.Author)
	d.addStr("revision", u.Revision)
	d.addInt("dateCreated", u.DateCreated)
	d.addInt("lastModified", u.LastModified)
	if u.IsDeleted {
		d.addBool("isDeleted", true)
		d.addInt("deletedAt", u.DeletedAt)
	}
	d.addList("requirementIds", u.RequirementIDs)
	d.addAttrs("customAttributes", u.CustomAttributes)
	d.addSection("Description", u.Description)
	d.addSection("Actor", u.Actor)
	d.addSection("Preconditions", u.Preconditions)
	d.addSection("Main Flow", u.MainFlow)
	d.addSection("Alternative Flows", u.AlternativeFlows)
	d.addSection("Postconditions", u.Postconditions)
	return d.Render()
}

// DecodeUseCase parses a use case with defaults for absent keys.
func DecodeUseCase(text string) models.UseCase {
	d := ParseDocument(text)
	return models.UseCase{
		ID:               d.Str("id", ""),
		Title:            d.Str("title", ""),
		Status:           d.Str("status", DefaultStatus),
		Priority:         d.Str("priority", DefaultPriority),
		Author:           d.Str("author", ""),
		Revision:         d.Str("revision", DefaultRevision),
		DateCreated:      d.Int("dateCreated", 0),
		LastModified:     d.Int("lastModified", 0),
		IsDeleted:        d.Bool("isDeleted"),
		DeletedAt:        d.Int("deletedAt", 0),
		RequirementIDs:   d.StrList("requirementIds"),
		CustomAttributes: d.Attrs("customAttributes"),
		Description:      d.Section("Description"),
		Actor:            d.Section("Actor"),
		Preconditions:    d.Section("Preconditions"),
		MainFlow:         d.Section("Main Flow"),
		AlternativeFlows: d.Section("Alternative Flows"),
		Postconditions:   d.Section("Postconditions"),
	}
}

// EncodeTestCase renders a test case to its file form.
func EncodeTestCase(tc models.TestCase) string {
	d := &Document{Title: tc.Title}
	d.addStr("id", tc.ID)
	d.addStr("title", tc.Title)
	d.addStr("status", tc.Status)
	d.addStr("priority", tc.Priority)
	d.addStr("author", tc.Author)
	d.addStr("revision", tc.Revision)
	d.addInt("dateCreated", tc.DateCreated)
	d.addInt("lastModified", tc.LastModified)
	if tc.IsDeleted {
		d.addBool("isDeleted", true)
		d.addInt("deletedAt", tc.DeletedAt)
	}
	d.addList("requirementIds", tc.RequirementIDs)
	d.addList("useCaseIds", tc.UseCaseIDs)
	d.addAttrs("customAttributes", tc.CustomAttributes)
	d.addSection("Description", tc.Description)
	d.addSection("Preconditions", tc.Preconditions)
	d.addSection("Test Steps", tc.Steps)
	d.addSection("Expected Results", tc.ExpectedResults)
	return d.Render()
}

// DecodeTestCase parses a test case with defaults for absent keys.
func DecodeTestCase(text string) models.TestCase {
	d := ParseDocument(text)
	return models.TestCase{
		ID:               d.Str("id", ""),
		Title:            d.Str("title", ""),
		Status:           d.Str("status", DefaultStatus),
		Priority:         d.Str("priority", DefaultPriority),
		Author:           d.Str("author", ""),
		Revision:         d.Str("revision", DefaultRevision),
		DateCreated:      d.Int("dateCreated", 0),
		LastModified:     d.Int("lastModified", 0),
		IsDeleted:        d.Bool("isDeleted"),
		DeletedAt:        d.Int("deletedAt", 0),
		RequirementIDs:   d.StrList("requirementIds"),
		UseCaseIDs:       d.StrList("useCaseIds"),
		CustomAttributes: d.Attrs("customAttributes"),
		Description:      d.Section("Description"),
		Preconditions:    d.Section("Preconditions"),
		Steps:            d.Section("Test Steps"),
		ExpectedResults:  d.Section("Expected Results"),
	}
}
