package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"floral_essence/internal/domain/models"
	"floral_essence/internal/lib/filename"
	"floral_essence/internal/lib/logger/sl"
	"floral_essence/internal/state"
)

const DefaultSettleDelay = 100 * time.Millisecond

// Remote is the server side of the sync.
type Remote interface {
	GetDatabase(ctx context.Context) (models.Document, error)
	SaveDatabase(ctx context.Context, doc models.Document, revision *int64) (int64, error)
	DeleteUpload(ctx context.Context, filename string) error
	RenameUpload(ctx context.Context, oldFilename, desired string) (models.RenameResult, error)
}

// Local is the durable local copy.
type Local interface {
	Load(ctx context.Context) (models.Document, state.Slice, error)
	SaveDocument(ctx context.Context, doc models.Document, which state.Slice) error
}

// Pending is a background task started by the syncer.
type Pending struct {
	done chan struct{}
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) finish(err error) {
	p.err = err
	close(p.done)
}

func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the task finished and returns its outcome.
func (p *Pending) Wait() error {
	<-p.done
	return p.err
}

type Option func(*Syncer)

// WithSettleDelay sets how long DeleteMedia waits before pushing.
func WithSettleDelay(d time.Duration) Option {
	return func(s *Syncer) { s.settle = d }
}

// WithRevisionCheck controls whether pushes send the known revision as a
// precondition.
func WithRevisionCheck(enabled bool) Option {
	return func(s *Syncer) { s.checkRevision = enabled }
}

// WithRemoteFetch controls whether Bootstrap merges the server document.
func WithRemoteFetch(enabled bool) Option {
	return func(s *Syncer) { s.fetch = enabled }
}

type Syncer struct {
	log           *slog.Logger
	store         *state.Store
	local         Local
	remote        Remote
	settle        time.Duration
	checkRevision bool
	fetch         bool

	wg sync.WaitGroup
}

func New(log *slog.Logger, store *state.Store, local Local, remote Remote, opts ...Option) *Syncer {
	s := &Syncer{
		log:           log,
		store:         store,
		local:         local,
		remote:        remote,
		settle:        DefaultSettleDelay,
		checkRevision: true,
		fetch:         true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// seedable lists the slices filled from the built-in defaults when the
// local copy lacks them.
const seedable = state.SliceProducts | state.SliceCategories | state.SliceSettings |
	state.SliceCategorySettings | state.SliceMedia | state.SliceZalo

// Bootstrap loads the local copy, seeds and persists the missing slices, and
// starts one background fetch from the server. A failed fetch is only logged;
// the returned Pending reports it to callers that care.
func (s *Syncer) Bootstrap(ctx context.Context) (*Pending, error) {
	const op = "syncer.Bootstrap"

	log := s.log.With(slog.String("op", op))

	doc, found, err := s.local.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	missing := seedable &^ found
	if missing != 0 {
		defaults := models.DefaultDocument()
		if missing.Has(state.SliceProducts) {
			doc.Products = defaults.Products
		}
		if missing.Has(state.SliceCategories) {
			doc.Categories = defaults.Categories
		}
		if missing.Has(state.SliceSettings) {
			doc.Settings = defaults.Settings
		}
		if missing.Has(state.SliceCategorySettings) {
			doc.CategorySettings = defaults.CategorySettings
		}
		if missing.Has(state.SliceMedia) {
			doc.Media = defaults.Media
		}
		if missing.Has(state.SliceZalo) {
			doc.ZaloNumber = defaults.ZaloNumber
		}

		if err := s.local.SaveDocument(ctx, doc, missing); err != nil {
			return nil, fmt.Errorf("%s: seed: %w", op, err)
		}
		log.Info("seeded local state", slog.String("slices", missing.String()))
	}

	if _, err := s.store.Dispatch(state.Replace{Doc: doc}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := newPending()
	if !s.fetch {
		p.finish(nil)
		return p, nil
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		remote, err := s.remote.GetDatabase(ctx)
		if err != nil {
			log.Info("remote unavailable, using local state", sl.Err(err))
			p.finish(err)
			return
		}

		snap, err := s.store.Dispatch(state.ApplyRemote{Doc: remote})
		if err != nil {
			log.Warn("failed to apply remote state", sl.Err(err))
			p.finish(err)
			return
		}

		log.Info("merged remote state", slog.Int64("revision", snap.Revision()))
		p.finish(nil)
	}()

	return p, nil
}

// Pull loads the server document into the store.
func (s *Syncer) Pull(ctx context.Context) (*state.Snapshot, error) {
	const op = "syncer.Pull"

	doc, err := s.remote.GetDatabase(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	snap, err := s.store.Dispatch(state.ApplyRemote{Doc: doc})
	if err != nil {
		return snap, fmt.Errorf("%s: %w", op, err)
	}
	return snap, nil
}

// Push sends the whole current document to the server and records the new
// revision.
func (s *Syncer) Push(ctx context.Context) (int64, error) {
	const op = "syncer.Push"

	doc := s.store.Snapshot().Document()

	var expected *int64
	if s.checkRevision {
		rev := doc.Revision
		expected = &rev
	}

	rev, err := s.remote.SaveDatabase(ctx, doc, expected)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.store.Dispatch(state.SetRevision{Revision: rev}); err != nil {
		return rev, fmt.Errorf("%s: %w", op, err)
	}
	return rev, nil
}

// DeleteMedia removes an upload and every reference to it. The cascade is
// applied even when the remote delete fails, and a push follows after the
// settle delay either way. The returned error is the remote delete outcome.
func (s *Syncer) DeleteMedia(ctx context.Context, name string) (*Pending, error) {
	const op = "syncer.DeleteMedia"

	log := s.log.With(slog.String("op", op), slog.String("filename", name))

	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, state.ErrEmptyFilename)
	}

	remoteErr := s.remote.DeleteUpload(ctx, name)
	if remoteErr != nil {
		log.Warn("remote delete failed", sl.Err(remoteErr))
		remoteErr = fmt.Errorf("%s: %w", op, remoteErr)
	}

	if _, err := s.store.Dispatch(state.RemoveImage{Filename: name}); err != nil {
		return nil, errors.Join(remoteErr, fmt.Errorf("%s: %w", op, err))
	}

	p := newPending()
	pushCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	time.AfterFunc(s.settle, func() {
		defer s.wg.Done()

		if _, err := s.Push(pushCtx); err != nil {
			log.Warn("auto push after delete failed", sl.Err(err))
			p.finish(err)
			return
		}
		p.finish(nil)
	})

	return p, remoteErr
}

// RenameMedia renames an upload on the server, rewrites every reference and
// pushes the result. Nothing changes locally when the rename is rejected.
func (s *Syncer) RenameMedia(ctx context.Context, name, desired string) (models.RenameResult, error) {
	const op = "syncer.RenameMedia"

	log := s.log.With(slog.String("op", op), slog.String("filename", name))

	if filename.Slugify(desired) == "" {
		return models.RenameResult{}, fmt.Errorf("%s: %w", op, filename.ErrEmptyName)
	}

	res, err := s.remote.RenameUpload(ctx, name, desired)
	if err != nil {
		log.Warn("remote rename failed", sl.Err(err))
		return models.RenameResult{}, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.store.Dispatch(state.RenameImage{
		Old:         name,
		NewFilename: res.NewFilename,
		NewURL:      res.NewURL,
	})
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.Push(ctx); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("upload renamed", slog.String("new_filename", res.NewFilename))
	return res, nil
}

// SaveImageMeta updates one media entry in the server document and mirrors
// it locally.
func (s *Syncer) SaveImageMeta(ctx context.Context, name string, meta models.ImageMeta) error {
	const op = "syncer.SaveImageMeta"

	doc, err := s.remote.GetDatabase(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if doc.Media == nil {
		doc.Media = models.MediaMetadata{}
	}
	if meta.IsZero() {
		delete(doc.Media, name)
	} else {
		doc.Media[name] = meta
	}

	var expected *int64
	if s.checkRevision {
		rev := doc.Revision
		expected = &rev
	}

	rev, err := s.remote.SaveDatabase(ctx, doc, expected)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.store.Dispatch(state.SetImageMeta{Filename: name, Meta: meta}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.store.Dispatch(state.SetRevision{Revision: rev}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close waits for background tasks.
func (s *Syncer) Close() {
	s.wg.Wait()
}
