package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SizeKind tells how size request should be resolved.
type SizeKind int

const (
	SizeNone SizeKind = iota
	SizeNamed
	SizeBox
)

// SizeRequest is either a named preset or a bounding box.
type SizeRequest struct {
	kind   SizeKind
	name   string
	width  int
	height int
}

// Named returns request for a named preset. Empty name means no request.
func Named(name string) SizeRequest {
	if name == "" {
		return SizeRequest{}
	}
	return SizeRequest{kind: SizeNamed, name: name}
}

// Box returns request for variant fitting into width x height.
func Box(width, height int) SizeRequest {
	return SizeRequest{kind: SizeBox, width: width, height: height}
}

// ParseSizeRequest accepts preset names ("medium") and boxes ("300x200").
// Anything else yields empty request.
func ParseSizeRequest(s string) SizeRequest {
	s = strings.TrimSpace(s)
	if s == "" {
		return SizeRequest{}
	}
	if w, h, ok := parseBox(s); ok {
		return Box(w, h)
	}
	if strings.ContainsAny(s, " \t/") {
		return SizeRequest{}
	}
	return Named(s)
}

func parseBox(s string) (int, int, bool) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return w, h, true
}

// Kind returns request kind.
func (r SizeRequest) Kind() SizeKind { return r.kind }

// Name returns preset name for named requests.
func (r SizeRequest) Name() string { return r.name }

// Dimensions returns box for box requests.
func (r SizeRequest) Dimensions() (int, int) { return r.width, r.height }

// IsEmpty reports whether nothing was requested.
func (r SizeRequest) IsEmpty() bool { return r.kind == SizeNone }

func (r SizeRequest) String() string {
	switch r.kind {
	case SizeNamed:
		return r.name
	case SizeBox:
		return fmt.Sprintf("%dx%d", r.width, r.height)
	}
	return ""
}
