package resolver

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/attachsizer/metadata"
	"github.com/attachsizer/model"
)

const attachmentPostType = "attachment"

var importableExts = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"png":  true,
}

// AttachedFile returns location of the attached file, relative locations are
// placed under upload base directory.
func (r *Resolver) AttachedFile(a model.Attachment) string {
	file := a.AttachedFile
	if file != "" && !strings.HasPrefix(file, "/") && !hasDrive(file) && r.uploads.BaseDir != "" {
		file = strings.TrimRight(r.uploads.BaseDir, "/") + "/" + file
	}
	if r.hooks.AttachedFile != nil {
		file = r.hooks.AttachedFile(file, a.ID)
	}
	return file
}

func hasDrive(file string) bool {
	return len(file) > 2 && file[1] == ':' && file[2] == '\\'
}

// AttachmentURL returns public URL of the attached file falling back to its
// GUID.
func (r *Resolver) AttachmentURL(a model.Attachment) (string, bool) {
	if a.PostType != attachmentPostType {
		return "", false
	}

	var url string
	if file := a.AttachedFile; file != "" && r.uploads.BaseURL != "" {
		baseURL := strings.TrimRight(r.uploads.BaseURL, "/")
		baseDir := strings.TrimRight(r.uploads.BaseDir, "/")
		switch {
		case baseDir != "" && strings.HasPrefix(file, baseDir):
			url = baseURL + strings.TrimPrefix(file, baseDir)
		case r.uploads.Marker != "" && strings.Contains(file, r.uploads.Marker):
			url = baseURL + file[strings.Index(file, r.uploads.Marker)+len(r.uploads.Marker):]
		default:
			url = baseURL + "/" + file
		}
	}

	if url == "" {
		url = a.GUID
	}
	if r.hooks.AttachmentURL != nil {
		url = r.hooks.AttachmentURL(url, a.ID)
	}
	if url == "" {
		return "", false
	}
	return url, true
}

// IsImage reports whether attachment is an image.
func (r *Resolver) IsImage(a model.Attachment) bool {
	file := r.AttachedFile(a)
	if file == "" {
		return false
	}
	if strings.HasPrefix(a.MimeType, "image/") {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file), "."))
	return a.MimeType == "import" && importableExts[ext]
}

// Metadata decodes stored metadata of the attachment.
func (r *Resolver) Metadata(a model.Attachment) (model.Metadata, error) {
	md, err := metadata.Decode(r.format, a.Metadata)
	if err != nil {
		return model.Metadata{}, fmt.Errorf("attachment %d: %w", a.ID, err)
	}
	if r.hooks.Metadata != nil {
		md = r.hooks.Metadata(md, a.ID)
	}
	return md, nil
}

// Catalog returns variants of the attachment with their locations.
func (r *Resolver) Catalog(a model.Attachment) (model.Catalog, error) {
	md, err := r.Metadata(a)
	if err != nil {
		return model.Catalog{}, err
	}
	url, _ := r.AttachmentURL(a)
	return md.Catalog(url), nil
}

// IntermediateSize selects stored variant of the attachment for req.
func (r *Resolver) IntermediateSize(a model.Attachment, req model.SizeRequest) (model.Selection, bool, error) {
	c, err := r.Catalog(a)
	if err != nil {
		return model.Selection{}, false, err
	}
	sel, ok := r.SelectBestSize(c, req)
	return sel, ok, nil
}

// Downsize returns URL and dimensions attachment should be displayed with for
// req. Stored variant is used when there is a suitable one, original
// otherwise.
func (r *Resolver) Downsize(ctx context.Context, a model.Attachment, req model.SizeRequest) (model.Downsized, bool, error) {
	if !r.IsImage(a) {
		return model.Downsized{}, false, nil
	}

	url, _ := r.AttachmentURL(a)
	md, err := r.Metadata(a)
	if err != nil {
		// broken metadata must not break rendering, original is still usable
		r.log.Warn("unable to decode attachment metadata", zap.Int64("id", a.ID), zap.Error(err))
		md = model.Metadata{}
	}

	if r.hooks.Downsize != nil {
		if out, ok := r.hooks.Downsize(a, req); ok {
			return out, true, nil
		}
	}

	var (
		width, height int
		intermediate  bool
	)
	if sel, ok := r.SelectBestSize(md.Catalog(url), req); ok {
		if url != "" {
			url = joinURL(url, sel.Variant.File)
		}
		width, height = sel.Width, sel.Height
		intermediate = true
	} else if req.Kind() == model.SizeNamed && req.Name() == ThumbnailSize {
		thumb, ok, err := r.legacyThumb(ctx, a, md, url)
		if err != nil {
			return model.Downsized{}, false, err
		}
		if ok {
			if url != "" {
				url = joinURL(url, filepath.Base(thumb.file))
			}
			width, height = thumb.width, thumb.height
			intermediate = true
		}
	}

	if width == 0 && height == 0 && md.Width != 0 && md.Height != 0 {
		width, height = md.Width, md.Height
	}

	if url == "" {
		return model.Downsized{}, false, nil
	}

	width, height = r.constrain(width, height, req)
	return model.Downsized{URL: url, Width: width, Height: height, Intermediate: intermediate}, true, nil
}

type thumbInfo struct {
	file          string
	width, height int
}

// legacyThumb looks up thumbnail recorded by old metadata next to the
// attached file.
func (r *Resolver) legacyThumb(ctx context.Context, a model.Attachment, md model.Metadata, url string) (thumbInfo, bool, error) {
	if md.Thumb == "" || r.prober == nil {
		return thumbInfo{}, false, nil
	}
	file := r.AttachedFile(a)
	if file == "" {
		return thumbInfo{}, false, nil
	}

	thumbFile := joinURL(file, md.Thumb)
	thumbURL := ""
	if url != "" {
		thumbURL = joinURL(url, md.Thumb)
	}

	w, h, found, err := r.prober.Probe(ctx, thumbFile, thumbURL)
	if err != nil {
		return thumbInfo{}, false, fmt.Errorf("probing thumbnail %s of attachment %d failed with error: %w", thumbFile, a.ID, err)
	}
	if !found {
		return thumbInfo{}, false, nil
	}
	if r.hooks.ThumbFile != nil {
		thumbFile = r.hooks.ThumbFile(thumbFile, a.ID)
	}
	return thumbInfo{file: thumbFile, width: w, height: h}, true, nil
}

// ThumbFile returns location of legacy thumbnail if it exists.
func (r *Resolver) ThumbFile(ctx context.Context, a model.Attachment) (string, bool, error) {
	md, err := r.Metadata(a)
	if err != nil {
		return "", false, err
	}
	url, _ := r.AttachmentURL(a)
	thumb, ok, err := r.legacyThumb(ctx, a, md, url)
	if err != nil || !ok {
		return "", false, err
	}
	return thumb.file, true, nil
}

// ThumbURL returns URL of the thumbnail attachment should be previewed with.
func (r *Resolver) ThumbURL(ctx context.Context, a model.Attachment) (string, bool, error) {
	url, ok := r.AttachmentURL(a)
	if !ok {
		return "", false, nil
	}

	d, ok, err := r.Downsize(ctx, a, model.Named(ThumbnailSize))
	if err != nil {
		return "", false, err
	}
	if ok {
		return d.URL, true, nil
	}

	thumb, ok, err := r.ThumbFile(ctx, a)
	if err != nil || !ok {
		return "", false, err
	}
	url = joinURL(url, filepath.Base(thumb))
	if r.hooks.ThumbURL != nil {
		url = r.hooks.ThumbURL(url, a.ID)
	}
	return url, true, nil
}
