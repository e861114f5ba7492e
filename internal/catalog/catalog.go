// Package catalog supplies the discipline and document-type reference lists
// the reconciler matches against.
package catalog

import (
	"context"
	"errors"

	"github.com/JonMunkholm/docimport/internal/reconcile"
)

// ErrUnavailable wraps failures to load reference data.
var ErrUnavailable = errors.New("catalog unavailable")

// Source loads the reference lists.
type Source interface {
	Disciplines(ctx context.Context) ([]reconcile.Discipline, error)
	DocumentTypes(ctx context.Context) ([]reconcile.DocumentType, error)
}

// Snapshot is a consistent copy of both lists.
type Snapshot struct {
	Disciplines   []reconcile.Discipline   `json:"disciplines" yaml:"disciplines"`
	DocumentTypes []reconcile.DocumentType `json:"document_types" yaml:"document_types"`
}

// Snapshotter is a Source that can return both lists from one load.
type Snapshotter interface {
	Source
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Load reads both lists from src. A Snapshotter is asked for a single
// snapshot so the lists cannot come from different loads.
func Load(ctx context.Context, src Source) (Snapshot, error) {
	if sn, ok := src.(Snapshotter); ok {
		return sn.Snapshot(ctx)
	}

	ds, err := src.Disciplines(ctx)
	if err != nil {
		return Snapshot{}, errors.Join(ErrUnavailable, err)
	}
	ts, err := src.DocumentTypes(ctx)
	if err != nil {
		return Snapshot{}, errors.Join(ErrUnavailable, err)
	}
	return Snapshot{Disciplines: ds, DocumentTypes: ts}, nil
}

// Static serves a fixed snapshot.
type Static struct {
	snap Snapshot
}

// NewStatic returns a Source over snap.
func NewStatic(snap Snapshot) *Static {
	return &Static{snap: snap}
}

func (s *Static) Disciplines(context.Context) ([]reconcile.Discipline, error) {
	return s.snap.Disciplines, nil
}

func (s *Static) DocumentTypes(context.Context) ([]reconcile.DocumentType, error) {
	return s.snap.DocumentTypes, nil
}
