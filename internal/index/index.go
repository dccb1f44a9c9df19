package index

import "github.com/starford/raido/internal/models"

// ArtifactIndex defines the catalog operations. Consumers should depend
// on this interface rather than the concrete *DB type to facilitate
// testing with mocks.
type ArtifactIndex interface {
	UpsertArtifact(a ArtifactRow, body string, related []string) error
	DeleteArtifact(path string) error
	GetChecksum(path string) (string, error)
	GetByID(kind models.Kind, id string) (*ArtifactRow, error)
	ListArtifacts(opts ListOptions) ([]ArtifactRow, int, error)
	ActiveArtifacts() ([]ArtifactRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	TraceLinks(id string) (outgoing, incoming []LinkRow, err error)
	Graph() ([]GraphNode, []GraphLink, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	InsertBaseline(b models.ProjectBaseline) error
	ListBaselines(projectID string) ([]models.ProjectBaseline, error)
	LatestBaseline(projectID string) (*models.ProjectBaseline, error)
	Close() error
}

// Verify *DB satisfies ArtifactIndex at compile time.
var _ ArtifactIndex = (*DB)(nil)
