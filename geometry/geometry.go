// Package geometry holds dimension arithmetic shared by size selection and
// display: proportional fitting, crop boxes and editor display limits.
package geometry

import "math"

// Box describes source rectangle taken from the original and the size it is
// scaled to.
type Box struct {
	SrcX, SrcY int
	SrcW, SrcH int
	DstW, DstH int
}

// ConstrainDimensions scales w x h down proportionally so it fits into
// maxW x maxH. Zero max means no limit for that dimension.
func ConstrainDimensions(w, h, maxW, maxH int) (int, int) {
	if maxW == 0 && maxH == 0 {
		return w, h
	}

	widthRatio, heightRatio := 1.0, 1.0
	var didWidth, didHeight bool

	if maxW > 0 && w > 0 && w > maxW {
		widthRatio = float64(maxW) / float64(w)
		didWidth = true
	}
	if maxH > 0 && h > 0 && h > maxH {
		heightRatio = float64(maxH) / float64(h)
		didHeight = true
	}

	smaller := math.Min(widthRatio, heightRatio)
	larger := math.Max(widthRatio, heightRatio)

	ratio := larger
	if int(float64(w)*larger) > maxW || int(float64(h)*larger) > maxH {
		ratio = smaller
	}

	newW := int(float64(w) * ratio)
	newH := int(float64(h) * ratio)

	// float truncation can leave result one pixel short of the box
	if didWidth && newW == maxW-1 {
		newW = maxW
	}
	if didHeight && newH == maxH-1 {
		newH = maxH
	}
	return newW, newH
}

// ResizeDimensions computes how an origW x origH image would be resized into
// dstW x dstH. Without crop the image is fitted proportionally, with crop it
// fills the box and the overflow is cut evenly from both sides.
// Returns false when input is unusable or when the result would not be
// smaller than the original.
func ResizeDimensions(origW, origH, dstW, dstH int, crop bool) (Box, bool) {
	if origW <= 0 || origH <= 0 {
		return Box{}, false
	}
	if dstW <= 0 && dstH <= 0 {
		return Box{}, false
	}

	var b Box
	if crop {
		aspect := float64(origW) / float64(origH)
		newW := min(dstW, origW)
		newH := min(dstH, origH)
		if newW <= 0 {
			newW = int(float64(newH) * aspect)
		}
		if newH <= 0 {
			newH = int(float64(newW) / aspect)
		}

		sizeRatio := math.Max(float64(newW)/float64(origW), float64(newH)/float64(origH))
		cropW := int(math.Round(float64(newW) / sizeRatio))
		cropH := int(math.Round(float64(newH) / sizeRatio))

		b = Box{
			SrcX: int(math.Floor(float64(origW-cropW) / 2)),
			SrcY: int(math.Floor(float64(origH-cropH) / 2)),
			SrcW: cropW,
			SrcH: cropH,
			DstW: newW,
			DstH: newH,
		}
	} else {
		newW, newH := ConstrainDimensions(origW, origH, dstW, dstH)
		b = Box{SrcW: origW, SrcH: origH, DstW: newW, DstH: newH}
	}

	if b.DstW >= origW && b.DstH >= origH {
		return Box{}, false
	}
	return b, true
}
