// Package resolver picks stored image variants for display requests and
// resolves where attachments and their variants can be found.
package resolver

import (
	"context"

	"go.uber.org/zap"

	"github.com/attachsizer/geometry"
	"github.com/attachsizer/metadata"
	"github.com/attachsizer/model"
)

// DefaultTolerance is how many pixels a variant may differ from a
// proportional resize of the original before it is treated as a crop.
const DefaultTolerance = 1

// ThumbnailSize is exempt from aspect ratio checks.
const ThumbnailSize = "thumbnail"

// ConstrainFunc limits w x h for displaying with req.
type ConstrainFunc func(w, h int, req model.SizeRequest) (int, int)

// ResizeFunc computes what resizing origW x origH into dstW x dstH produces.
type ResizeFunc func(origW, origH, dstW, dstH int, crop bool) (geometry.Box, bool)

//go:generate mockgen -destination=../mock/resolver/resolver.go -package=mock_resolver github.com/attachsizer/resolver ThumbProber

// ThumbProber checks whether legacy thumbnail exists and reports its size.
type ThumbProber interface {
	Probe(ctx context.Context, file, url string) (width, height int, found bool, err error)
}

// Uploads describes where attached files live and where they are served from.
type Uploads struct {
	BaseDir string
	BaseURL string
	// Marker is a path fragment after which attached file path is relative
	// to BaseURL.
	Marker string
}

// Hooks allow callers to override computed values. Nil hooks are skipped.
type Hooks struct {
	Downsize      func(a model.Attachment, req model.SizeRequest) (model.Downsized, bool)
	AttachmentURL func(url string, id int64) string
	AttachedFile  func(file string, id int64) string
	Metadata      func(md model.Metadata, id int64) model.Metadata
	ThumbFile     func(file string, id int64) string
	ThumbURL      func(url string, id int64) string
}

// Resolver is safe for concurrent use, it is never modified after New.
type Resolver struct {
	constrain ConstrainFunc
	resize    ResizeFunc
	tolerance int
	format    metadata.Format
	uploads   Uploads
	prober    ThumbProber
	hooks     Hooks
	log       *zap.Logger
}

// Option configures Resolver.
type Option func(*Resolver)

// WithEditor uses editor limits for display dimensions.
func WithEditor(e geometry.Editor) Option {
	return func(r *Resolver) { r.constrain = e.Constrain }
}

// WithConstrain replaces display constraint.
func WithConstrain(f ConstrainFunc) Option {
	return func(r *Resolver) {
		if f != nil {
			r.constrain = f
		}
	}
}

// WithResize replaces resize geometry used by aspect ratio checks.
func WithResize(f ResizeFunc) Option {
	return func(r *Resolver) {
		if f != nil {
			r.resize = f
		}
	}
}

// WithTolerance sets allowed pixel difference in aspect ratio checks.
func WithTolerance(px int) Option {
	return func(r *Resolver) { r.tolerance = max(px, 0) }
}

// WithFormat sets stored metadata encoding.
func WithFormat(f metadata.Format) Option {
	return func(r *Resolver) { r.format = f }
}

// WithUploads sets upload locations.
func WithUploads(u Uploads) Option {
	return func(r *Resolver) { r.uploads = u }
}

// WithProber enables legacy thumbnail lookups.
func WithProber(p ThumbProber) Option {
	return func(r *Resolver) { r.prober = p }
}

// WithHooks installs override hooks.
func WithHooks(h Hooks) Option {
	return func(r *Resolver) { r.hooks = h }
}

// WithLogger sets logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// New returns Resolver with default geometry and JSON metadata unless
// overridden by opts.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		constrain: geometry.Editor{}.Constrain,
		resize:    geometry.ResizeDimensions,
		tolerance: DefaultTolerance,
		format:    metadata.JSON,
		uploads:   Uploads{Marker: "wp-content/uploads"},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
