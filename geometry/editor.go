package geometry

import "github.com/attachsizer/model"

// Fallback box used for thumbnails when none is configured.
const (
	DefaultThumbWidth  = 128
	DefaultThumbHeight = 96
)

// Preset is a configured maximum box for a named size.
type Preset struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Editor limits dimensions images are displayed at.
type Editor struct {
	Thumbnail    Preset
	Medium       Preset
	Large        Preset
	Additional   map[string]Preset
	ContentWidth int
	// Admin lets content width cap additional sizes too.
	Admin bool
	// MaxSize, when set, may replace computed maximum box.
	MaxSize func(maxW, maxH int, req model.SizeRequest) (int, int)
}

// MaxBox returns box w x h has to fit into when displayed for req.
func (e Editor) MaxBox(w, h int, req model.SizeRequest) (int, int) {
	var maxW, maxH int

	switch req.Kind() {
	case model.SizeBox:
		maxW, maxH = req.Dimensions()
	case model.SizeNamed:
		switch name := req.Name(); name {
		case "thumb", "thumbnail":
			maxW, maxH = e.Thumbnail.Width, e.Thumbnail.Height
			if maxW == 0 && maxH == 0 {
				maxW, maxH = DefaultThumbWidth, DefaultThumbHeight
			}
		case "medium":
			maxW, maxH = e.Medium.Width, e.Medium.Height
		case "large":
			maxW, maxH = e.Large.Width, e.Large.Height
			if e.ContentWidth > 0 {
				maxW = min(e.ContentWidth, maxW)
			}
		default:
			p, ok := e.Additional[name]
			if !ok {
				maxW, maxH = w, h
				break
			}
			maxW, maxH = p.Width, p.Height
			if e.ContentWidth > 0 && e.Admin {
				maxW = min(e.ContentWidth, maxW)
			}
		}
	default:
		maxW, maxH = w, h
	}

	if e.MaxSize != nil {
		maxW, maxH = e.MaxSize(maxW, maxH, req)
	}
	return maxW, maxH
}

// Constrain scales w x h down to the editor limit for req.
func (e Editor) Constrain(w, h int, req model.SizeRequest) (int, int) {
	maxW, maxH := e.MaxBox(w, h, req)
	return ConstrainDimensions(w, h, maxW, maxH)
}
