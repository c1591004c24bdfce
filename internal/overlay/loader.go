package overlay

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ObjectLister fetches the stored objects of a collection.
type ObjectLister interface {
	Objects(ctx context.Context, collection string) ([]RawObject, error)
}

// Loader fetches object lists for the selected collection and feeds them
// to the overlay. Requests are not cancelled; instead, a response that
// arrives after the selection changed is detected by generation and
// dropped, so the overlay never shows another collection's objects.
type Loader struct {
	lister  ObjectLister
	overlay *Overlay
	logger  *zap.Logger

	mu       sync.Mutex
	gen      uint64
	selected string
}

// NewLoader creates a loader feeding the given overlay. logger may be nil.
func NewLoader(lister ObjectLister, ov *Overlay, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{lister: lister, overlay: ov, logger: logger}
}

// Select switches the active collection, clears the overlay and starts a
// fetch in the background. The fetch result is applied only if the
// selection is unchanged when it resolves.
func (l *Loader) Select(ctx context.Context, collection string) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.selected = collection
	l.overlay.Clear()
	l.mu.Unlock()

	go func() {
		objs, err := l.lister.Objects(ctx, collection)
		l.resolve(gen, collection, objs, err)
	}()
}

// Selected returns the currently selected collection.
func (l *Loader) Selected() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selected
}

func (l *Loader) resolve(gen uint64, collection string, objs []RawObject, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.gen {
		l.logger.Debug("discarding stale object list",
			zap.String("collection", collection),
		)
		return
	}
	if err != nil {
		l.logger.Warn("object list fetch failed",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return
	}
	l.overlay.SetObjects(objs)
}
