package resolver

import (
	"math/rand"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/attachsizer/geometry"
	"github.com/attachsizer/model"
)

func scenarioCatalog() model.Catalog {
	return model.Catalog{
		Original: model.Original{
			Width:  1200,
			Height: 800,
			File:   "2012/06/photo.jpg",
			URL:    "http://example.com/uploads/2012/06/photo.jpg",
		},
		Sizes: []model.Variant{
			{Name: "thumbnail", Width: 150, Height: 150, File: "photo-150x150.jpg"},
			{Name: "medium", Width: 300, Height: 200, File: "photo-300x200.jpg"},
			{Name: "large", Width: 600, Height: 400, File: "photo-600x400.jpg"},
		},
	}
}

func withSizes(sizes ...model.Variant) model.Catalog {
	c := scenarioCatalog()
	c.Sizes = sizes
	return c
}

func TestSelectBestSize(t *testing.T) {
	type tc struct {
		name         string
		resolver     *Resolver
		catalog      model.Catalog
		req          model.SizeRequest
		expectedSize string
		expW, expH   int
	}

	r := New(WithLogger(zaptest.NewLogger(t)))

	cropped := scenarioCatalog()
	cropped.Sizes = []model.Variant{
		cropped.Sizes[0],
		cropped.Sizes[1],
		{Name: "cropped", Width: 400, Height: 400, File: "photo-400x400.jpg"},
		cropped.Sizes[2],
	}

	tcs := []tc{
		{
			name:         "exact crop on width",
			resolver:     r,
			catalog:      scenarioCatalog(),
			req:          model.Box(300, 300),
			expectedSize: "medium",
			expW:         300, expH: 200,
		},
		{
			name:         "smallest variant reaching the box",
			resolver:     r,
			catalog:      scenarioCatalog(),
			req:          model.Box(500, 500),
			expectedSize: "large",
			expW:         500, expH: 333,
		},
		{
			name:         "divergent crop is skipped",
			resolver:     r,
			catalog:      cropped,
			req:          model.Box(350, 350),
			expectedSize: "large",
			expW:         350, expH: 233,
		},
		{
			name:     "divergent crop without alternative",
			resolver: r,
			catalog:  withSizes(model.Variant{Name: "cropped", Width: 400, Height: 400, File: "photo-400x400.jpg"}),
			req:      model.Box(350, 350),
		},
		{
			name:         "named thumbnail of any shape",
			resolver:     r,
			catalog:      withSizes(model.Variant{Name: "thumbnail", Width: 48, Height: 192, File: "photo-48x192.jpg"}),
			req:          model.Named("thumbnail"),
			expectedSize: "thumbnail",
			expW:         24, expH: 96,
		},
		{
			name:         "named size ignores the box search",
			resolver:     r,
			catalog:      withSizes(model.Variant{Name: "banner", Width: 1000, Height: 100, File: "photo-1000x100.jpg"}),
			req:          model.Named("banner"),
			expectedSize: "banner",
			expW:         1000, expH: 100,
		},
		{
			name:         "thumbnail is exempt from aspect check",
			resolver:     r,
			catalog:      withSizes(model.Variant{Name: "thumbnail", Width: 150, Height: 150, File: "photo-150x150.jpg"}),
			req:          model.Box(100, 100),
			expectedSize: "thumbnail",
			expW:         100, expH: 100,
		},
		{
			name:     "same shape under another name is rejected",
			resolver: r,
			catalog:  withSizes(model.Variant{Name: "square", Width: 150, Height: 150, File: "photo-150x150.jpg"}),
			req:      model.Box(100, 100),
		},
		{
			name:     "first exact crop wins",
			resolver: r,
			catalog: withSizes(
				model.Variant{Name: "strip", Width: 300, Height: 100},
				model.Variant{Name: "medium", Width: 300, Height: 200},
			),
			req:          model.Box(300, 300),
			expectedSize: "strip",
			expW:         300, expH: 100,
		},
		{
			name:         "exact crop on height",
			resolver:     r,
			catalog:      withSizes(model.Variant{Name: "tall", Width: 250, Height: 300}),
			req:          model.Box(400, 300),
			expectedSize: "tall",
			expW:         250, expH: 300,
		},
		{
			name:     "same area keeps the later variant",
			resolver: r,
			catalog: withSizes(
				model.Variant{Name: "landscape", Width: 600, Height: 400},
				model.Variant{Name: "portrait", Width: 400, Height: 600},
			),
			req: model.Box(500, 500),
		},
		{
			name:     "same area keeps the later variant reversed",
			resolver: r,
			catalog: withSizes(
				model.Variant{Name: "portrait", Width: 400, Height: 600},
				model.Variant{Name: "landscape", Width: 600, Height: 400},
			),
			req:          model.Box(500, 500),
			expectedSize: "landscape",
			expW:         500, expH: 333,
		},
		{
			name:         "one pixel off is tolerated",
			resolver:     r,
			catalog:      withSizes(model.Variant{Name: "big", Width: 600, Height: 401}),
			req:          model.Box(500, 500),
			expectedSize: "big",
			expW:         500, expH: 334,
		},
		{
			name:     "two pixels off is not",
			resolver: r,
			catalog:  withSizes(model.Variant{Name: "big", Width: 600, Height: 402}),
			req:      model.Box(500, 500),
		},
		{
			name:         "wider tolerance",
			resolver:     New(WithTolerance(2)),
			catalog:      withSizes(model.Variant{Name: "big", Width: 600, Height: 402}),
			req:          model.Box(500, 500),
			expectedSize: "big",
			expW:         500, expH: 335,
		},
		{
			name:     "zero tolerance",
			resolver: New(WithTolerance(0)),
			catalog:  withSizes(model.Variant{Name: "big", Width: 600, Height: 401}),
			req:      model.Box(500, 500),
		},
		{
			name:     "nothing big enough",
			resolver: r,
			catalog:  scenarioCatalog(),
			req:      model.Box(2000, 2000),
		},
		{
			name:     "variant of original size does not fit",
			resolver: r,
			catalog:  withSizes(model.Variant{Name: "full", Width: 1200, Height: 800}),
			req:      model.Box(1000, 1000),
		},
		{
			name:     "unknown name",
			resolver: r,
			catalog:  scenarioCatalog(),
			req:      model.Named("huge"),
		},
		{
			name:     "empty request",
			resolver: r,
			catalog:  scenarioCatalog(),
			req:      model.SizeRequest{},
		},
		{
			name:     "empty catalog",
			resolver: r,
			catalog:  withSizes(),
			req:      model.Box(300, 300),
		},
		{
			name:     "empty catalog named",
			resolver: r,
			catalog:  withSizes(),
			req:      model.Named("thumbnail"),
		},
		{
			name:     "unusable original",
			resolver: r,
			catalog:  model.Catalog{Sizes: scenarioCatalog().Sizes},
			req:      model.Box(500, 500),
		},
		{
			name:         "unusable original named",
			resolver:     r,
			catalog:      model.Catalog{Sizes: scenarioCatalog().Sizes},
			req:          model.Named("large"),
			expectedSize: "large",
			expW:         600, expH: 400,
		},
		{
			name:         "zero box",
			resolver:     r,
			catalog:      scenarioCatalog(),
			req:          model.Box(0, 0),
			expectedSize: "thumbnail",
			expW:         150, expH: 150,
		},
		{
			name:         "negative box",
			resolver:     r,
			catalog:      scenarioCatalog(),
			req:          model.Box(-5, -5),
			expectedSize: "thumbnail",
			expW:         150, expH: 150,
		},
		{
			name:     "negative thumbnail in box",
			resolver: r,
			catalog:  withSizes(model.Variant{Name: "thumbnail", Width: -150, Height: 150, File: "photo-150x150.jpg"}),
			req:      model.Box(100, 100),
		},
		{
			name:     "negative thumbnail by name",
			resolver: r,
			catalog:  withSizes(model.Variant{Name: "thumbnail", Width: -150, Height: 150, File: "photo-150x150.jpg"}),
			req:      model.Named("thumbnail"),
		},
		{
			name:     "exact crop with negative box and size",
			resolver: r,
			catalog:  withSizes(model.Variant{Name: "broken", Width: -5, Height: -10, File: "photo.jpg"}),
			req:      model.Box(-5, -5),
		},
		{
			name:     "zero height variant",
			resolver: r,
			catalog: withSizes(
				model.Variant{Name: "flat", Width: 600, Height: 0, File: "photo-600x0.jpg"},
			),
			req: model.Box(500, 500),
		},
		{
			name:     "malformed size is passed over",
			resolver: r,
			catalog: withSizes(
				model.Variant{Name: "thumbnail", Width: 0, Height: 150, File: "photo-0x150.jpg"},
				model.Variant{Name: "large", Width: 600, Height: 400, File: "photo-600x400.jpg"},
			),
			req:          model.Box(100, 100),
			expectedSize: "large",
			expW:         100, expH: 66,
		},
		{
			name: "injected resize never fits",
			resolver: New(WithResize(func(int, int, int, int, bool) (geometry.Box, bool) {
				return geometry.Box{}, false
			})),
			catalog: scenarioCatalog(),
			req:     model.Box(500, 500),
		},
		{
			name: "injected constraint",
			resolver: New(WithConstrain(func(int, int, model.SizeRequest) (int, int) {
				return 1, 1
			})),
			catalog:      scenarioCatalog(),
			req:          model.Box(500, 500),
			expectedSize: "large",
			expW:         1, expH: 1,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			sel, ok := tc.resolver.SelectBestSize(tc.catalog, tc.req)
			if tc.expectedSize == "" {
				if ok {
					t.Fatalf("expected no match but got %q", sel.Variant.Name)
				}
				return
			}
			if !ok {
				t.Fatalf("expected %q but got no match", tc.expectedSize)
			}
			if sel.Variant.Name != tc.expectedSize {
				t.Fatalf("expected %q but got %q", tc.expectedSize, sel.Variant.Name)
			}
			if sel.Width != tc.expW || sel.Height != tc.expH {
				t.Fatalf("expected display size %dx%d but got %dx%d", tc.expW, tc.expH, sel.Width, sel.Height)
			}
		})
	}
}

func TestSelectBestSizeLocations(t *testing.T) {
	r := New()

	sel, ok := r.SelectBestSize(scenarioCatalog(), model.Box(300, 300))
	if !ok {
		t.Fatal("expected match")
	}
	if sel.Variant.Path != "2012/06/photo-300x200.jpg" {
		t.Fatalf("unexpected path: %s", sel.Variant.Path)
	}
	if sel.Variant.URL != "http://example.com/uploads/2012/06/photo-300x200.jpg" {
		t.Fatalf("unexpected url: %s", sel.Variant.URL)
	}

	c := withSizes(model.Variant{
		Name:  "medium",
		Width: 300, Height: 200,
		File: "photo-300x200.jpg",
		Path: "/cache/photo-300x200.jpg",
		URL:  "http://cdn.example.com/photo-300x200.jpg",
	})
	sel, ok = r.SelectBestSize(c, model.Named("medium"))
	if !ok {
		t.Fatal("expected match")
	}
	if sel.Variant.Path != "/cache/photo-300x200.jpg" || sel.Variant.URL != "http://cdn.example.com/photo-300x200.jpg" {
		t.Fatalf("stored locations must be kept, got %+v", sel.Variant)
	}

	c = withSizes(model.Variant{Name: "medium", Width: 300, Height: 200, File: "/abs/photo-300x200.jpg"})
	sel, _ = r.SelectBestSize(c, model.Named("medium"))
	if sel.Variant.Path != "/abs/photo-300x200.jpg" {
		t.Fatalf("absolute file must be kept, got %s", sel.Variant.Path)
	}
}

func TestSelectBestSizeIsIdempotent(t *testing.T) {
	r := New()
	c := scenarioCatalog()
	for _, req := range []model.SizeRequest{model.Box(500, 500), model.Named("medium"), model.Box(2000, 2000)} {
		first, ok1 := r.SelectBestSize(c, req)
		second, ok2 := r.SelectBestSize(c, req)
		if first != second || ok1 != ok2 {
			t.Fatalf("%s: results differ: %+v %v / %+v %v", req, first, ok1, second, ok2)
		}
	}
	if c.Sizes[1].Path != "" {
		t.Fatal("catalog must not be modified")
	}
}

func TestSelectBestSizeSmallestArea(t *testing.T) {
	r := New()
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		// proportional 3:2 variants of a 1200x800 original, distinct areas
		used := map[int]bool{}
		c := model.Catalog{Original: model.Original{Width: 1200, Height: 800}}
		for j := 0; j < 6; j++ {
			k := 1 + rnd.Intn(399)
			if used[k] {
				continue
			}
			used[k] = true
			c.Sizes = append(c.Sizes, model.Variant{Name: "s", Width: 3 * k, Height: 2 * k})
		}
		w, h := 1+rnd.Intn(1200), 1+rnd.Intn(800)

		exact := false
		best := -1
		for _, v := range c.Sizes {
			if (v.Width == w && v.Height <= h) || (v.Height == h && v.Width <= w) {
				exact = true
			}
			if (v.Width >= w || v.Height >= h) && (best < 0 || v.Area() < best) {
				best = v.Area()
			}
		}
		if exact {
			continue
		}

		sel, ok := r.SelectBestSize(c, model.Box(w, h))
		if best < 0 {
			if ok {
				t.Fatalf("box %dx%d: expected no match but got %+v", w, h, sel.Variant)
			}
			continue
		}
		if !ok {
			t.Fatalf("box %dx%d: expected area %d but got no match", w, h, best)
		}
		if sel.Variant.Area() != best {
			t.Fatalf("box %dx%d: expected area %d but got %d", w, h, best, sel.Variant.Area())
		}
	}
}
