// Package metadata decodes per-attachment metadata blobs as they are kept in
// storage.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/maruel/natural"

	"github.com/attachsizer/model"
)

// Format names blob encoding.
type Format string

const (
	JSON Format = "json"
	CBOR Format = "cbor"
)

// ErrUnknownFormat is returned for formats other than JSON and CBOR.
var ErrUnknownFormat = errors.New("unknown metadata format")

// Valid reports whether format is supported.
func (f Format) Valid() bool {
	return f == JSON || f == CBOR
}

// Decode parses metadata blob. Empty blob yields empty metadata.
func Decode(f Format, data []byte) (model.Metadata, error) {
	switch f {
	case JSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return model.Metadata{}, nil
		}
		return decodeJSON(data)
	case CBOR:
		if len(data) == 0 {
			return model.Metadata{}, nil
		}
		return decodeCBOR(data)
	}
	return model.Metadata{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Encode serializes metadata, sizes are written as a list to keep their order.
func Encode(f Format, md model.Metadata) ([]byte, error) {
	switch f {
	case JSON:
		return json.Marshal(md)
	case CBOR:
		return cbor.Marshal(md)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

type jsonBlob struct {
	Width  int             `json:"width"`
	Height int             `json:"height"`
	File   string          `json:"file"`
	Thumb  string          `json:"thumb"`
	Sizes  json.RawMessage `json:"sizes"`
}

func decodeJSON(data []byte) (model.Metadata, error) {
	var b jsonBlob
	if err := json.Unmarshal(data, &b); err != nil {
		return model.Metadata{}, fmt.Errorf("decoding json metadata failed with error: %w", err)
	}
	sizes, err := decodeJSONSizes(b.Sizes)
	if err != nil {
		return model.Metadata{}, err
	}
	return model.Metadata{
		Width:  b.Width,
		Height: b.Height,
		File:   b.File,
		Thumb:  b.Thumb,
		Sizes:  sizes,
	}, nil
}

// decodeJSONSizes accepts both a list of named variants and an object keyed by
// variant name. Object keys are read in document order.
func decodeJSONSizes(raw json.RawMessage) ([]model.Variant, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '[' {
		var sizes []model.Variant
		if err := json.Unmarshal(raw, &sizes); err != nil {
			return nil, fmt.Errorf("decoding sizes failed with error: %w", err)
		}
		return sizes, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decoding sizes failed with error: %w", err)
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("sizes must be a list or an object, got %v", tok)
	}

	var sizes []model.Variant
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decoding sizes failed with error: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected size key %v", tok)
		}
		var v model.Variant
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("decoding size %q failed with error: %w", name, err)
		}
		v.Name = name
		sizes = append(sizes, v)
	}
	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return nil, fmt.Errorf("decoding sizes failed, unterminated object: %v", err)
	}
	return sizes, nil
}

type cborBlob struct {
	Width  int             `cbor:"width"`
	Height int             `cbor:"height"`
	File   string          `cbor:"file"`
	Thumb  string          `cbor:"thumb"`
	Sizes  cbor.RawMessage `cbor:"sizes"`
}

func decodeCBOR(data []byte) (model.Metadata, error) {
	var b cborBlob
	if err := cbor.Unmarshal(data, &b); err != nil {
		return model.Metadata{}, fmt.Errorf("decoding cbor metadata failed with error: %w", err)
	}
	md := model.Metadata{
		Width:  b.Width,
		Height: b.Height,
		File:   b.File,
		Thumb:  b.Thumb,
	}
	if len(b.Sizes) == 0 {
		return md, nil
	}

	if err := cbor.Unmarshal(b.Sizes, &md.Sizes); err == nil {
		return md, nil
	}

	// map form carries no order, fall back to natural name order
	var byName map[string]model.Variant
	if err := cbor.Unmarshal(b.Sizes, &byName); err != nil {
		return model.Metadata{}, fmt.Errorf("decoding cbor sizes failed with error: %w", err)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	for _, name := range names {
		v := byName[name]
		v.Name = name
		md.Sizes = append(md.Sizes, v)
	}
	return md, nil
}
