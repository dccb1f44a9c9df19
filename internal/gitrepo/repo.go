// Package gitrepo drives the workspace's git repository through the git
// binary. Every command inherits the caller's context, so a hung
// backend is bounded by whatever timeout the caller applies.
package gitrepo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/starford/raido/internal/models"
)

// Field and record separators for machine-readable log output.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// Repo executes git commands against one repository directory.
type Repo struct {
	dir         string
	bin         string
	authorName  string
	authorEmail string
}

// New creates a Repo for dir. bin is the git executable ("git" when
// empty); authorName/authorEmail sign commits and tags.
func New(dir, bin, authorName, authorEmail string) *Repo {
	if bin == "" {
		bin = "git"
	}
	return &Repo{dir: dir, bin: bin, authorName: authorName, authorEmail: authorEmail}
}

// Init initializes the repository if it is not one already.
func (r *Repo) Init(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(r.dir, ".git")); err == nil {
		return nil
	}
	_, err := r.run(ctx, "init")
	return err
}

// CommitAll stages every change and commits it with the given message,
// returning the resulting commit hash. When the working tree is clean
// no commit is created and the current HEAD hash is returned instead.
func (r *Repo) CommitAll(ctx context.Context, message string) (string, error) {
	if _, err := r.run(ctx, "add", "-A"); err != nil {
		return "", err
	}
	staged, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(staged) == "" {
		if !r.hasHead(ctx) {
			return "", nil
		}
		return r.head(ctx)
	}
	_, err = r.run(ctx,
		"-c", "user.name="+r.authorName,
		"-c", "user.email="+r.authorEmail,
		"-c", "commit.gpgsign=false",
		"commit", "-m", message)
	if err != nil {
		return "", err
	}
	return r.head(ctx)
}

// Log returns the full commit log, newest first. An empty repository
// yields an empty log.
func (r *Repo) Log(ctx context.Context) ([]models.CommitInfo, error) {
	if !r.hasHead(ctx) {
		return nil, nil
	}
	out, err := r.run(ctx, "log", logFormat())
	if err != nil {
		return nil, err
	}
	return parseLog(out), nil
}

// LogPath returns the commit log scoped to one file, newest first,
// following renames.
func (r *Repo) LogPath(ctx context.Context, path string) ([]models.CommitInfo, error) {
	if !r.hasHead(ctx) {
		return nil, nil
	}
	out, err := r.run(ctx, "log", "--follow", logFormat(), "--", filepath.ToSlash(path))
	if err != nil {
		return nil, err
	}
	return parseLog(out), nil
}

// LatestCommit returns the hash of the newest commit touching path, or
// "" when the file has no history.
func (r *Repo) LatestCommit(ctx context.Context, path string) (string, error) {
	if !r.hasHead(ctx) {
		return "", nil
	}
	out, err := r.run(ctx, "log", "-1", "--format=%H", "--", filepath.ToSlash(path))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Tags lists every tag with its message, creation time, and the tagged
// commit (dereferenced for annotated tags).
func (r *Repo) Tags(ctx context.Context) ([]models.TagDetail, error) {
	format := "%(refname:short)" + fieldSep +
		"%(contents:subject)" + fieldSep +
		"%(creatordate:unix)" + fieldSep +
		"%(objectname)" + fieldSep +
		"%(*objectname)"
	out, err := r.run(ctx, "tag", "-l", "--format="+format)
	if err != nil {
		return nil, err
	}

	var tags []models.TagDetail
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, fieldSep)
		if len(fields) < 5 || fields[0] == "" {
			continue
		}
		ts, _ := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
		commit := fields[4]
		if commit == "" {
			// Lightweight tag: objectname already is the commit.
			commit = fields[3]
		}
		tags = append(tags, models.TagDetail{
			Name:      fields[0],
			Message:   fields[1],
			Timestamp: ts,
			Commit:    commit,
		})
	}
	return tags, nil
}

// CreateTag creates an annotated tag on HEAD.
func (r *Repo) CreateTag(ctx context.Context, name, message string) error {
	_, err := r.run(ctx,
		"-c", "user.name="+r.authorName,
		"-c", "user.email="+r.authorEmail,
		"tag", "-a", name, "-m", message)
	return err
}

// ShowFile returns the content of path as of the given commit.
func (r *Repo) ShowFile(ctx context.Context, hash, path string) ([]byte, error) {
	out, err := r.run(ctx, "show", hash+":"+filepath.ToSlash(path))
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// Status reports the working-tree state of every changed path.
func (r *Repo) Status(ctx context.Context) ([]models.FileStatus, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	var statuses []models.FileStatus
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		code := line[:2]
		path := strings.TrimSpace(line[3:])
		// Renames are reported as "old -> new"; the new path is the one
		// that exists in the working tree.
		if _, renamed, found := strings.Cut(path, " -> "); found {
			path = renamed
		}
		var status string
		switch {
		case strings.Contains(code, "?") || strings.Contains(code, "A"):
			status = "new"
		case strings.Contains(code, "D"):
			status = "deleted"
		case strings.Contains(code, "M") || strings.Contains(code, "R"):
			status = "modified"
		default:
			status = "unchanged"
		}
		statuses = append(statuses, models.FileStatus{Path: path, Status: status})
	}
	return statuses, nil
}

func logFormat() string {
	return "--pretty=format:%H" + fieldSep + "%an" + fieldSep + "%at" + fieldSep + "%s" + recordSep
}

func parseLog(out string) []models.CommitInfo {
	var commits []models.CommitInfo
	for _, rec := range strings.Split(out, recordSep) {
		rec = strings.TrimLeft(rec, "\n")
		fields := strings.Split(rec, fieldSep)
		if len(fields) < 4 || fields[0] == "" {
			continue
		}
		ts, _ := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
		commits = append(commits, models.CommitInfo{
			Hash:      fields[0],
			Author:    fields[1],
			Timestamp: ts,
			Message:   fields[3],
		})
	}
	return commits
}

func (r *Repo) head(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (r *Repo) hasHead(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, r.bin, "rev-parse", "--verify", "-q", "HEAD")
	cmd.Dir = r.dir
	return cmd.Run() == nil
}

// run executes one git command and returns its stdout. Failures carry
// the command's stderr.
func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Dir = r.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("gitrepo: git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}
