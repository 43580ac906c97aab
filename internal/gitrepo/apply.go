package gitrepo

import (
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/kilupskalvis/git-force-prefix/internal/core"
	"github.com/kilupskalvis/git-force-prefix/internal/models"
)

// Apply stores the commit built from head with the found timestamps and
// moves head.Ref to it. The object is hashed by go-git before anything is
// written; if that hash differs from the search digest nothing changes.
// The ref only moves if it still points at head.Hash.
func (r *Repo) Apply(head *Head, res *core.Result) (models.Digest, error) {
	if !res.Found() {
		return models.Digest{}, core.ErrSearchExhausted
	}

	obj := r.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.CommitObject)
	w, err := obj.Writer()
	if err != nil {
		return models.Digest{}, fmt.Errorf("encode commit: %w", err)
	}
	if _, err := w.Write(core.SerializeBody(head.Fields, res.Candidate)); err != nil {
		w.Close()
		return models.Digest{}, fmt.Errorf("encode commit: %w", err)
	}
	if err := w.Close(); err != nil {
		return models.Digest{}, fmt.Errorf("encode commit: %w", err)
	}

	if got := models.Digest(obj.Hash()); got != res.Digest {
		return models.Digest{}, fmt.Errorf("%w: git hashes the amended commit to %s, search reported %s",
			core.ErrSerializationInconsistency, got, res.Digest)
	}

	h, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return models.Digest{}, fmt.Errorf("write commit: %w", err)
	}

	oldRef := plumbing.NewHashReference(head.Ref, plumbing.Hash(head.Hash))
	newRef := plumbing.NewHashReference(head.Ref, h)
	if err := r.repo.Storer.CheckAndSetReference(newRef, oldRef); err != nil {
		return models.Digest{}, fmt.Errorf("update %s: %w", head.Ref, err)
	}

	slog.Info("amended HEAD",
		slog.String("ref", head.Ref.String()),
		slog.String("old", head.Hash.String()),
		slog.String("new", h.String()),
	)
	return models.Digest(h), nil
}
