package models

// CommitInfo is one entry in the version-control log, newest first.
// Timestamp is epoch seconds (commit time as reported by the backend).
type CommitInfo struct {
	Hash      string `json:"hash"`
	Message   string `json:"message"`
	Author    string `json:"author"`
	Timestamp int64  `json:"timestamp"`
}

// TagDetail describes one baseline tag in the repository.
// Timestamp is epoch seconds; Commit is the tagged commit hash
// (dereferenced for annotated tags).
type TagDetail struct {
	Name      string `json:"name"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	Commit    string `json:"commit"`
}

// FileStatus is one working-tree entry from a status query.
// Status is "new", "modified", "deleted", or "unchanged".
type FileStatus struct {
	Path   string `json:"path"`
	Status string `json:"status"`
}
