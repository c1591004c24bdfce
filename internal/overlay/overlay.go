// Package overlay manages the read-only layer of stored objects rendered
// beneath an active capture session.
package overlay

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/meridian-cloud/meridian/internal/domain"
	"github.com/meridian-cloud/meridian/internal/geojson"
)

// Layer z-order. The overlay renders strictly below the capture layer.
const (
	ZOverlay = 5
	ZCapture = 10
)

// RawObject is a stored object as echoed by SCAN: id, raw interchange
// geometry and numeric fields.
type RawObject struct {
	ID       string
	Geometry json.RawMessage
	Fields   []domain.Field
}

// Feature is a decoded object ready for muted, non-interactive rendering,
// labeled by id.
type Feature struct {
	ID       string
	Geometry domain.Geometry
	Fields   []domain.Field
}

// Overlay holds the decoded features for the currently selected object
// set. The list is replaced wholesale on every change, never mutated in
// place. Safe for concurrent use: the loader applies fetch results from
// a background goroutine while the render path reads.
type Overlay struct {
	logger *zap.Logger

	mu       sync.RWMutex
	features []Feature
	fitted   bool
}

// New creates an empty overlay. logger may be nil.
func New(logger *zap.Logger) *Overlay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Overlay{logger: logger}
}

// SetObjects clears the overlay and rebuilds it from objs. Objects whose
// geometry fails to decode are logged and skipped; the rest still render.
// A new object set re-arms the one-shot extent fit.
func (o *Overlay) SetObjects(objs []RawObject) {
	features := make([]Feature, 0, len(objs))
	for _, obj := range objs {
		g, err := geojson.DecodeObject(obj.ID, obj.Geometry)
		if err != nil {
			o.logger.Warn("skipping object with undecodable geometry",
				zap.String("id", obj.ID),
				zap.Error(err),
			)
			continue
		}
		features = append(features, Feature{ID: obj.ID, Geometry: g, Fields: obj.Fields})
	}

	o.mu.Lock()
	o.features = features
	o.fitted = false
	o.mu.Unlock()
}

// Clear drops all features.
func (o *Overlay) Clear() {
	o.mu.Lock()
	o.features = nil
	o.fitted = false
	o.mu.Unlock()
}

// Features returns the decoded features in render order. The returned
// slice is never mutated after publication.
func (o *Overlay) Features() []Feature {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.features
}

// FitExtent returns the combined extent of the overlay the first time it
// is called for a given object set, provided no geometry is captured yet.
// Subsequent calls report ok=false so re-renders do not re-fit the view.
func (o *Overlay) FitExtent(captureActive bool) (sw, ne domain.LonLat, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fitted || captureActive || len(o.features) == 0 {
		return domain.LonLat{}, domain.LonLat{}, false
	}
	sw, ne = o.features[0].Geometry.Extent()
	for _, f := range o.features[1:] {
		fsw, fne := f.Geometry.Extent()
		if fsw.Lon < sw.Lon {
			sw.Lon = fsw.Lon
		}
		if fsw.Lat < sw.Lat {
			sw.Lat = fsw.Lat
		}
		if fne.Lon > ne.Lon {
			ne.Lon = fne.Lon
		}
		if fne.Lat > ne.Lat {
			ne.Lat = fne.Lat
		}
	}
	o.fitted = true
	return sw, ne, true
}
