package models

// CustomAttribute is one user-defined attribute on an artifact.
// Value is a string, a number (int64/float64), or a boolean.
type CustomAttribute struct {
	AttributeID string `json:"attributeId"`
	Value       any    `json:"value"`
}

// Requirement is a single tracked requirement.
type Requirement struct {
	ID                 string            `json:"id"`
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	Text               string            `json:"text"`
	Rationale          string            `json:"rationale"`
	Comments           string            `json:"comments"`
	Status             string            `json:"status"`
	Priority           string            `json:"priority"`
	Author             string            `json:"author"`
	VerificationMethod string            `json:"verificationMethod"`
	Revision           string            `json:"revision"`
	DateCreated        int64             `json:"dateCreated"`
	LastModified       int64             `json:"lastModified"`
	IsDeleted          bool              `json:"isDeleted,omitempty"`
	DeletedAt          int64             `json:"deletedAt,omitempty"`
	UseCaseIDs         []string          `json:"useCaseIds"`
	ParentIDs          []string          `json:"parentIds"`
	CustomAttributes   []CustomAttribute `json:"customAttributes"`
}

// UseCase describes an interaction flow satisfying one or more requirements.
type UseCase struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Actor            string            `json:"actor"`
	Preconditions    string            `json:"preconditions"`
	MainFlow         string            `json:"mainFlow"`
	AlternativeFlows string            `json:"alternativeFlows"`
	Postconditions   string            `json:"postconditions"`
	Status           string            `json:"status"`
	Priority         string            `json:"priority"`
	Author           string            `json:"author"`
	Revision         string            `json:"revision"`
	DateCreated      int64             `json:"dateCreated"`
	LastModified     int64             `json:"lastModified"`
	IsDeleted        bool              `json:"isDeleted,omitempty"`
	DeletedAt        int64             `json:"deletedAt,omitempty"`
	RequirementIDs   []string          `json:"requirementIds"`
	CustomAttributes []CustomAttribute `json:"customAttributes"`
}

// TestCase verifies requirements and use cases.
type TestCase struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Preconditions    string            `json:"preconditions"`
	Steps            string            `json:"steps"`
	ExpectedResults  string            `json:"expectedResults"`
	Status           string            `json:"status"`
	Priority         string            `json:"priority"`
	Author           string            `json:"author"`
	Revision         string            `json:"revision"`
	DateCreated      int64             `json:"dateCreated"`
	LastModified     int64             `json:"lastModified"`
	IsDeleted        bool              `json:"isDeleted,omitempty"`
	DeletedAt        int64             `json:"deletedAt,omitempty"`
	RequirementIDs   []string          `json:"requirementIds"`
	UseCaseIDs       []string          `json:"useCaseIds"`
	CustomAttributes []CustomAttribute `json:"customAttributes"`
}

// Information is a free-form note attached to the project.
type Information struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Category        string   `json:"category"`
	Author          string   `json:"author"`
	Revision        string   `json:"revision"`
	DateCreated     int64    `json:"dateCreated"`
	LastModified    int64    `json:"lastModified"`
	IsDeleted       bool     `json:"isDeleted,omitempty"`
	DeletedAt       int64    `json:"deletedAt,omitempty"`
	LinkedArtifacts []string `json:"linkedArtifacts"`
}

// Risk records a project risk with its mitigation.
type Risk struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Mitigation      string   `json:"mitigation"`
	Probability     string   `json:"probability"`
	Impact          string   `json:"impact"`
	Status          string   `json:"status"`
	Author          string   `json:"author"`
	Revision        string   `json:"revision"`
	DateCreated     int64    `json:"dateCreated"`
	LastModified    int64    `json:"lastModified"`
	IsDeleted       bool     `json:"isDeleted,omitempty"`
	DeletedAt       int64    `json:"deletedAt,omitempty"`
	LinkedArtifacts []string `json:"linkedArtifacts"`
}

// Document is a long-form project document.
type Document struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Content      string `json:"content"`
	Author       string `json:"author"`
	Status       string `json:"status"`
	Revision     string `json:"revision"`
	DateCreated  int64  `json:"dateCreated"`
	LastModified int64  `json:"lastModified"`
	IsDeleted    bool   `json:"isDeleted,omitempty"`
	DeletedAt    int64  `json:"deletedAt,omitempty"`
}

// Link is an explicit directed relationship between two artifacts.
type Link struct {
	ID           string `json:"id"`
	SourceID     string `json:"sourceId"`
	TargetID     string `json:"targetId"`
	Type         string `json:"type"`
	Description  string `json:"description"`
	Revision     string `json:"revision"`
	DateCreated  int64  `json:"dateCreated"`
	LastModified int64  `json:"lastModified"`
	IsDeleted    bool   `json:"isDeleted,omitempty"`
	DeletedAt    int64  `json:"deletedAt,omitempty"`
}

// Project holds project-level metadata.
type Project struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Author       string `json:"author"`
	Revision     string `json:"revision"`
	DateCreated  int64  `json:"dateCreated"`
	LastModified int64  `json:"lastModified"`
	IsDeleted    bool   `json:"isDeleted,omitempty"`
	DeletedAt    int64  `json:"deletedAt,omitempty"`
}

// User identifies an author referenced from artifacts.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Revision     string `json:"revision"`
	DateCreated  int64  `json:"dateCreated"`
	LastModified int64  `json:"lastModified"`
	IsDeleted    bool   `json:"isDeleted,omitempty"`
	DeletedAt    int64  `json:"deletedAt,omitempty"`
}
