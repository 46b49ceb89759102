package model

// Original describes source upload of the attachment.
type Original struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	File   string `json:"file,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Variant describes one previously generated resized copy.
type Variant struct {
	Name     string `json:"name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	File     string `json:"file"`
	MimeType string `json:"mime-type,omitempty"`
	Path     string `json:"path,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Area returns number of pixels in the variant.
func (v Variant) Area() int {
	return v.Width * v.Height
}

// Catalog holds all variants of one upload in storage order.
type Catalog struct {
	Original Original
	Sizes    []Variant
}

// Variant returns variant by its name.
func (c Catalog) Variant(name string) (Variant, bool) {
	for _, v := range c.Sizes {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// Selection is the variant chosen for a size request together with the
// dimensions it should be rendered at.
type Selection struct {
	Variant Variant `json:"variant"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
}

// Metadata is the stored per-attachment metadata blob.
type Metadata struct {
	Width  int       `json:"width" cbor:"width"`
	Height int       `json:"height" cbor:"height"`
	File   string    `json:"file" cbor:"file"`
	Thumb  string    `json:"thumb,omitempty" cbor:"thumb,omitempty"`
	Sizes  []Variant `json:"sizes,omitempty" cbor:"sizes,omitempty"`
}

// Catalog builds catalog out of metadata, url is the public location of the
// original file.
func (m Metadata) Catalog(url string) Catalog {
	return Catalog{
		Original: Original{
			Width:  m.Width,
			Height: m.Height,
			File:   m.File,
			URL:    url,
		},
		Sizes: m.Sizes,
	}
}
