package models

// ProjectBaseline is a named, timestamped snapshot of the commit hash of
// every non-deleted artifact at one moment. Immutable after creation.
// Timestamp is epoch milliseconds.
type ProjectBaseline struct {
	ID               string            `json:"id"`
	ProjectID        string            `json:"projectId"`
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Description      string            `json:"description"`
	Timestamp        int64             `json:"timestamp"`
	ArtifactCommits  map[string]string `json:"artifactCommits"`
	AddedArtifacts   []string          `json:"addedArtifacts"`
	RemovedArtifacts []string          `json:"removedArtifacts"`

	// Latest is set on list responses for the baseline with the maximum
	// timestamp. It is a display attribute, not persisted.
	Latest bool `json:"latest,omitempty"`
}
