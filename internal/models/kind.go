// Package models defines the domain types for Raido.
package models

// Kind identifies an artifact record type.
type Kind string

// Artifact kinds.
const (
	KindRequirement Kind = "requirement"
	KindUseCase     Kind = "usecase"
	KindTestCase    Kind = "testcase"
	KindInformation Kind = "information"
	KindRisk        Kind = "risk"
	KindDocument    Kind = "document"
	KindLink        Kind = "link"
	KindProject     Kind = "project"
	KindUser        Kind = "user"
)

// AllKinds lists every artifact kind in workspace-directory order.
func AllKinds() []Kind {
	return []Kind{
		KindRequirement,
		KindUseCase,
		KindTestCase,
		KindInformation,
		KindRisk,
		KindDocument,
		KindLink,
		KindProject,
		KindUser,
	}
}

var kindDirs = map[Kind]string{
	KindRequirement: "requirements",
	KindUseCase:     "usecases",
	KindTestCase:    "testcases",
	KindInformation: "information",
	KindRisk:        "risks",
	KindDocument:    "documents",
	KindLink:        "links",
	KindProject:     "projects",
	KindUser:        "users",
}

// Dir returns the workspace subdirectory holding files of this kind.
func (k Kind) Dir() string {
	return kindDirs[k]
}

// HasStatus reports whether the kind's schema carries a lifecycle
// status field.
func (k Kind) HasStatus() bool {
	switch k {
	case KindRequirement, KindUseCase, KindTestCase, KindRisk, KindDocument:
		return true
	}
	return false
}

// HasPriority reports whether the kind's schema carries a priority
// field.
func (k Kind) HasPriority() bool {
	switch k {
	case KindRequirement, KindUseCase, KindTestCase:
		return true
	}
	return false
}

// Valid reports whether k is a known artifact kind.
func (k Kind) Valid() bool {
	_, ok := kindDirs[k]
	return ok
}

// KindFromDir maps a workspace subdirectory back to its kind.
// Returns "" when the directory is not a kind directory.
func KindFromDir(dir string) Kind {
	for k, d := range kindDirs {
		if d == dir {
			return k
		}
	}
	return ""
}
