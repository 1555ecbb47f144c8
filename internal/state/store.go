package state

import (
	"errors"
	"fmt"
	"sync"

	"floral_essence/internal/domain/models"
)

// Slice names one part of the document. Changed is a set of slices.
type Slice uint8

const (
	SliceProducts Slice = 1 << iota
	SliceCategories
	SliceSettings
	SliceCategorySettings
	SliceMedia
	SliceZalo
	SliceRevision
)

const SliceAll = SliceProducts | SliceCategories | SliceSettings | SliceCategorySettings | SliceMedia | SliceZalo | SliceRevision

type Changed = Slice

func (s Slice) Has(other Slice) bool {
	return s&other != 0
}

func (s Slice) String() string {
	names := []struct {
		s    Slice
		name string
	}{
		{SliceProducts, "products"},
		{SliceCategories, "categories"},
		{SliceSettings, "settings"},
		{SliceCategorySettings, "categorySettings"},
		{SliceMedia, "media"},
		{SliceZalo, "zaloNumber"},
		{SliceRevision, "revision"},
	}
	out := ""
	for _, n := range names {
		if s.Has(n.s) {
			if out != "" {
				out += ","
			}
			out += n.name
		}
	}
	if out == "" {
		return "none"
	}
	return out
}

// Snapshot is an immutable view of the document. Accessors hand out copies.
type Snapshot struct {
	doc     models.Document
	Version uint64
}

func (s *Snapshot) Document() models.Document {
	return s.doc.Clone()
}

func (s *Snapshot) Products() []models.Product {
	return s.doc.Clone().Products
}

func (s *Snapshot) Categories() []string {
	return append([]string{}, s.doc.Categories...)
}

func (s *Snapshot) Settings() models.GlobalSettings {
	return s.doc.Settings
}

func (s *Snapshot) CategorySettings(name string) (models.CategorySettings, bool) {
	cs, ok := s.doc.CategorySettings[name]
	return cs, ok
}

func (s *Snapshot) Media() models.MediaMetadata {
	return s.doc.Media.Clone()
}

func (s *Snapshot) Revision() int64 {
	return s.doc.Revision
}

func (s *Snapshot) Product(id string) (models.Product, bool) {
	for _, p := range s.doc.Products {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return models.Product{}, false
}

// Action is a reducer step. Apply mutates the working copy it is given and
// reports which slices it touched. A returned error discards the copy.
type Action interface {
	Apply(doc *models.Document) (Changed, error)
}

// Event is delivered to subscribers after each effective dispatch.
type Event struct {
	Snapshot *Snapshot
	Changed  Changed
	Action   Action
}

type Subscriber func(Event) error

var ErrSubscriber = errors.New("subscriber failed")

// Store is the single authoritative container of the client document.
// Subscribers run synchronously under the store lock and must not dispatch.
type Store struct {
	mu     sync.Mutex
	snap   *Snapshot
	subs   map[int]Subscriber
	nextID int
	order  []int
}

func NewStore(doc models.Document) *Store {
	doc = doc.Clone()
	doc.Normalize()
	return &Store{
		snap: &Snapshot{doc: doc},
		subs: make(map[int]Subscriber),
	}
}

func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers fn and returns a function removing it.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// Dispatch applies a to a copy of the current document. On success the copy
// becomes the new snapshot and subscribers are notified. The new snapshot is
// kept even when a subscriber fails; the failure is returned wrapped in
// ErrSubscriber.
func (s *Store) Dispatch(a Action) (*Snapshot, error) {
	const op = "state.Dispatch"

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.snap.doc.Clone()
	changed, err := a.Apply(&work)
	if err != nil {
		return s.snap, fmt.Errorf("%s: %w", op, err)
	}
	if changed == 0 {
		return s.snap, nil
	}

	s.snap = &Snapshot{doc: work, Version: s.snap.Version + 1}

	ev := Event{Snapshot: s.snap, Changed: changed, Action: a}
	var errs []error
	for _, id := range s.order {
		if err := s.subs[id](ev); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return s.snap, fmt.Errorf("%s: %w: %w", op, ErrSubscriber, errors.Join(errs...))
	}

	return s.snap, nil
}
