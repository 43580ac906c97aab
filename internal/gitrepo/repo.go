// Package gitrepo reads HEAD's commit from a git repository and writes the
// re-timestamped commit back once a prefix match is found.
package gitrepo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/kilupskalvis/git-force-prefix/internal/core"
	"github.com/kilupskalvis/git-force-prefix/internal/models"
)

// ErrNoCommits is returned when HEAD points at an unborn branch.
var ErrNoCommits = errors.New("HEAD has no commits yet")

// Repo wraps a go-git repository.
type Repo struct {
	repo *gitlib.Repository
}

// Head is HEAD's commit, parsed and checked to round-trip.
type Head struct {
	Hash models.Digest
	// Ref is the branch HEAD points to, or plumbing.HEAD when detached.
	Ref    plumbing.ReferenceName
	Fields *models.CommitFields
	Anchor models.Candidate
	// DroppedSignature is true when HEAD was signed; the amended commit
	// will not be.
	DroppedSignature bool
}

// Detached returns true if HEAD is not on a branch
func (h *Head) Detached() bool {
	return h.Ref == plumbing.HEAD
}

// Open opens the repository containing path.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	r, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &Repo{repo: r}, nil
}

// New wraps an already opened repository.
func New(r *gitlib.Repository) *Repo {
	return &Repo{repo: r}
}

// GitDir returns the repository's .git directory, or "" when the
// repository is not stored on disk.
func (r *Repo) GitDir() string {
	if fs, ok := r.repo.Storer.(*filesystem.Storage); ok {
		return fs.Filesystem().Root()
	}
	return ""
}

// ReadHead reads and parses HEAD's commit. The parsed fields must serialize
// back to the stored bytes; anything else is ErrSerializationInconsistency.
func (r *Repo) ReadHead() (*Head, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, ErrNoCommits
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	raw, err := r.readObject(ref.Hash())
	if err != nil {
		return nil, err
	}

	parsed, err := ParseCommit(raw)
	if err != nil {
		return nil, fmt.Errorf("parse HEAD %s: %w", ref.Hash(), err)
	}

	head := &Head{
		Hash:             models.Digest(ref.Hash()),
		Ref:              ref.Name(),
		Fields:           parsed.Fields,
		Anchor:           parsed.Anchor,
		DroppedSignature: parsed.Signed,
	}
	if err := verifyRoundTrip(head, parsed); err != nil {
		return nil, err
	}

	slog.Debug("read HEAD",
		slog.String("hash", head.Hash.String()),
		slog.String("ref", head.Ref.String()),
		slog.Int("parents", len(head.Fields.Parents)),
		slog.Bool("root", head.Fields.IsRoot()),
		slog.Bool("merge", head.Fields.IsMergeCommit()),
		slog.Bool("signed", head.DroppedSignature),
	)
	return head, nil
}

func (r *Repo) readObject(h plumbing.Hash) ([]byte, error) {
	obj, err := r.repo.Storer.EncodedObject(plumbing.CommitObject, h)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", h, err)
	}
	rd, err := obj.Reader()
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", h, err)
	}
	defer rd.Close()

	raw, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", h, err)
	}
	return raw, nil
}

// verifyRoundTrip checks that the serializer rebuilds HEAD byte for byte.
func verifyRoundTrip(head *Head, parsed *Parsed) error {
	body := core.SerializeBody(head.Fields, head.Anchor)
	if !bytes.Equal(body, parsed.Unsigned) {
		return fmt.Errorf("%w: HEAD %s does not serialize back to its stored form",
			core.ErrSerializationInconsistency, head.Hash)
	}
	if head.DroppedSignature {
		return nil
	}
	if got := core.Sum(core.Serialize(head.Fields, head.Anchor)); got != head.Hash {
		return fmt.Errorf("%w: HEAD %s re-hashes to %s",
			core.ErrSerializationInconsistency, head.Hash, got)
	}
	return nil
}
