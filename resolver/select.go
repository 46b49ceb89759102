package resolver

import (
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/attachsizer/model"
)

// SelectBestSize picks variant from catalog for req.
//
// Named requests return the variant with that name. Box requests return the
// first variant already cut to the box in one dimension, otherwise the
// smallest variant reaching the box in at least one dimension whose
// proportions match the original.
func (r *Resolver) SelectBestSize(c model.Catalog, req model.SizeRequest) (model.Selection, bool) {
	if len(c.Sizes) == 0 {
		return model.Selection{}, false
	}

	switch req.Kind() {
	case model.SizeNamed:
		v, ok := c.Variant(req.Name())
		if !ok || !usable(v) {
			return model.Selection{}, false
		}
		return r.selection(c.Original, v, req), true
	case model.SizeBox:
		return r.nearest(c, req)
	}
	return model.Selection{}, false
}

func (r *Resolver) nearest(c model.Catalog, req model.SizeRequest) (model.Selection, bool) {
	if c.Original.Width <= 0 || c.Original.Height <= 0 {
		r.log.Debug("original dimensions are unusable, skipping size search",
			zap.Int("width", c.Original.Width), zap.Int("height", c.Original.Height))
		return model.Selection{}, false
	}

	w, h := req.Dimensions()

	// same area: later variant wins
	byArea := make(map[int]int, len(c.Sizes))
	for i, v := range c.Sizes {
		if !usable(v) {
			r.log.Debug("skipping size with unusable dimensions",
				zap.String("size", v.Name), zap.Int("width", v.Width), zap.Int("height", v.Height))
			continue
		}
		if (v.Width == w && v.Height <= h) || (v.Height == h && v.Width <= w) {
			return r.selection(c.Original, v, req), true
		}
		byArea[v.Area()] = i
	}

	areas := make([]int, 0, len(byArea))
	for a := range byArea {
		areas = append(areas, a)
	}
	sort.Ints(areas)

	for _, a := range areas {
		v := c.Sizes[byArea[a]]
		if v.Width < w && v.Height < h {
			continue
		}
		if !r.proportional(c.Original, v) {
			r.log.Debug("skipping size with divergent aspect ratio",
				zap.String("size", v.Name), zap.Int("width", v.Width), zap.Int("height", v.Height))
			continue
		}
		return r.selection(c.Original, v, req), true
	}
	return model.Selection{}, false
}

// usable reports whether v has dimensions it can be rendered with.
func usable(v model.Variant) bool {
	return v.Width > 0 && v.Height > 0
}

// proportional reports whether v looks like a plain resize of the original.
func (r *Resolver) proportional(o model.Original, v model.Variant) bool {
	if v.Name == ThumbnailSize {
		return true
	}
	b, ok := r.resize(o.Width, o.Height, v.Width, v.Height, false)
	if !ok {
		return false
	}
	return abs(b.DstW-v.Width) <= r.tolerance && abs(b.DstH-v.Height) <= r.tolerance
}

func (r *Resolver) selection(o model.Original, v model.Variant, req model.SizeRequest) model.Selection {
	v = Locate(o, v)
	w, h := r.constrain(v.Width, v.Height, req)
	return model.Selection{Variant: v, Width: w, Height: h}
}

// Locate fills variant path and url from original ones when missing.
func Locate(o model.Original, v model.Variant) model.Variant {
	if v.File == "" {
		return v
	}
	if v.Path == "" && o.File != "" {
		v.Path = joinPath(o.File, v.File)
	}
	if v.URL == "" && o.URL != "" {
		v.URL = joinURL(o.URL, v.File)
	}
	return v
}

func joinPath(ref, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(filepath.Dir(ref), file)
}

// joinURL replaces last segment of ref with file.
func joinURL(ref, file string) string {
	i := strings.LastIndex(ref, "/")
	if i < 0 {
		return file
	}
	return ref[:i+1] + file
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
