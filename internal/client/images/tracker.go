// Package images tracks image edits made in a product form until the product
// is saved: local files to upload and server images marked for deletion.
package images

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/gophstore/internal/filex"
)

var (
	ErrUnknownImage    = errors.New("image does not belong to this product")
	ErrFlushStarted    = errors.New("image changes are already being saved")
	ErrIndexOutOfRange = errors.New("no pending image at that position")
	ErrFlushInProgress = errors.New("image flush already running")
)

// Sink receives the flushed changes. client.HTTPClient satisfies it.
type Sink interface {
	SaveImages(ctx context.Context, productID int64, files []filex.Image, saveLocation string) error
	DeleteImage(ctx context.Context, imageID int64) error
}

// LocalImage is a file picked by the user and not yet uploaded.
type LocalImage struct {
	Path string
}

// Options configures a Tracker.
type Options struct {
	// SaveLocation is forwarded with uploads ("database" or "s3").
	SaveLocation string
	// ReadFile loads a local image at flush time; defaults to filex.ReadImage.
	ReadFile func(path string) (*filex.Image, error)
}

// Tracker holds the pending image edits of one form session.
type Tracker struct {
	saveLocation string
	readFile     func(path string) (*filex.Image, error)

	mu        sync.Mutex
	additions []LocalImage
	removals  map[int64]struct{}
	known     map[int64]struct{}
	flushing  bool
}

// NewTracker starts a session for a product whose live images are known.
func NewTracker(known []int64, opts Options) *Tracker {
	t := &Tracker{
		saveLocation: opts.SaveLocation,
		readFile:     opts.ReadFile,
		removals:     make(map[int64]struct{}),
		known:        make(map[int64]struct{}, len(known)),
	}
	if t.readFile == nil {
		t.readFile = filex.ReadImage
	}
	for _, id := range known {
		t.known[id] = struct{}{}
	}
	return t
}

// AddLocalImage queues a file for upload and returns its position.
func (t *Tracker) AddLocalImage(path string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.additions = append(t.additions, LocalImage{Path: path})
	return len(t.additions) - 1
}

// RemoveLocalAddition drops a queued file. It is refused while a flush runs;
// additions left behind by a failed flush can be dropped before the retry.
func (t *Tracker) RemoveLocalAddition(index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.flushing {
		return ErrFlushStarted
	}
	if index < 0 || index >= len(t.additions) {
		return ErrIndexOutOfRange
	}
	t.additions = slices.Delete(t.additions, index, index+1)
	return nil
}

// ToggleRemoval marks or unmarks a server image for deletion and reports
// whether it is now marked.
func (t *Tracker) ToggleRemoval(id int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.known[id]; !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownImage, id)
	}
	if _, marked := t.removals[id]; marked {
		delete(t.removals, id)
		return false, nil
	}
	t.removals[id] = struct{}{}
	return true, nil
}

// IsMarked reports whether id is marked for deletion.
func (t *Tracker) IsMarked(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.removals[id]
	return ok
}

// Pending returns copies of the queued additions and the marked ids (sorted).
func (t *Tracker) Pending() ([]LocalImage, []int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.additions), t.sortedRemovals()
}

func (t *Tracker) sortedRemovals() []int64 {
	ids := make([]int64, 0, len(t.removals))
	for id := range t.removals {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Empty reports whether there is nothing to flush.
func (t *Tracker) Empty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.additions) == 0 && len(t.removals) == 0
}

// Discard forgets all pending edits without touching the server.
func (t *Tracker) Discard() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.additions = nil
	clear(t.removals)
}

// Flush uploads all additions in one request tagged with productID, then
// deletes each marked image in turn. A delete is attempted even if the upload
// failed. Steps that succeed leave the pending state; failed ones stay for a
// retry. The returned error joins every failure.
func (t *Tracker) Flush(ctx context.Context, productID int64, sink Sink) error {
	t.mu.Lock()
	if t.flushing {
		t.mu.Unlock()
		return ErrFlushInProgress
	}
	t.flushing = true
	additions := slices.Clone(t.additions)
	removals := t.sortedRemovals()
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.flushing = false
		t.mu.Unlock()
	}()

	var errs []error
	if len(additions) > 0 {
		if err := t.upload(ctx, productID, additions, sink); err != nil {
			errs = append(errs, err)
		} else {
			t.mu.Lock()
			t.additions = slices.Delete(t.additions, 0, min(len(additions), len(t.additions)))
			t.mu.Unlock()
		}
	}

	for _, id := range removals {
		if err := sink.DeleteImage(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("delete image %d: %w", id, err))
			continue
		}
		t.mu.Lock()
		delete(t.removals, id)
		delete(t.known, id)
		t.mu.Unlock()
	}
	return errors.Join(errs...)
}

func (t *Tracker) upload(ctx context.Context, productID int64, additions []LocalImage, sink Sink) error {
	files := make([]filex.Image, 0, len(additions))
	for _, a := range additions {
		img, err := t.readFile(a.Path)
		if err != nil {
			return fmt.Errorf("read image %s: %w", a.Path, err)
		}
		files = append(files, *img)
	}
	if err := sink.SaveImages(ctx, productID, files, t.saveLocation); err != nil {
		return fmt.Errorf("upload %d images: %w", len(files), err)
	}
	return nil
}
