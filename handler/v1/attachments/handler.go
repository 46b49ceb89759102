package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/maruel/natural"
	"go.uber.org/zap"

	"github.com/attachsizer/metadata"
	"github.com/attachsizer/model"
	"github.com/attachsizer/resolver"
)

const (
	defaultSize = resolver.ThumbnailSize
	maxBatch    = 100
)

// Service represents handler service.
type Service struct {
	repo     model.AttachmentsRepository
	resolver *resolver.Resolver
	log      *zap.Logger
}

// NewService returns new handler service.
func NewService(repo model.AttachmentsRepository, res *resolver.Resolver, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, resolver: res, log: log}
}

// Src returns URL and dimensions attachment should be displayed with.
func (s *Service) Src(w http.ResponseWriter, r *http.Request) {
	data, statusCode := func() ([]byte, int) {
		ctx := r.Context()
		req, err := sizeParams(r)
		if err != nil {
			return []byte(fmt.Sprintf("error validating size params: %v", err)),
				http.StatusBadRequest
		}
		a, statusCode, err := s.attachment(r)
		if err != nil {
			return []byte(err.Error()), statusCode
		}
		d, ok, err := s.resolver.Downsize(ctx, a, req)
		if err != nil {
			s.log.Error("unable to downsize attachment", zap.Int64("id", a.ID), zap.Error(err))
			return []byte(fmt.Sprintf("error resolving attachment %d: %v", a.ID, err)),
				http.StatusInternalServerError
		}
		if !ok {
			return []byte(fmt.Sprintf("attachment %d has no image for size %s", a.ID, req)),
				http.StatusNotFound
		}
		return marshal(d, http.StatusOK)
	}()
	response(w, data, statusCode)
}

// Intermediate returns stored variant selected for requested size.
func (s *Service) Intermediate(w http.ResponseWriter, r *http.Request) {
	data, statusCode := func() ([]byte, int) {
		req, err := sizeParams(r)
		if err != nil {
			return []byte(fmt.Sprintf("error validating size params: %v", err)),
				http.StatusBadRequest
		}
		a, statusCode, err := s.attachment(r)
		if err != nil {
			return []byte(err.Error()), statusCode
		}
		sel, ok, err := s.resolver.IntermediateSize(a, req)
		if err != nil {
			return []byte(fmt.Sprintf("error reading metadata of attachment %d: %v", a.ID, err)),
				http.StatusInternalServerError
		}
		if !ok {
			return []byte(fmt.Sprintf("attachment %d has no stored size for %s", a.ID, req)),
				http.StatusNotFound
		}
		return marshal(sel, http.StatusOK)
	}()
	response(w, data, statusCode)
}

// Sizes returns all stored variants of attachment.
func (s *Service) Sizes(w http.ResponseWriter, r *http.Request) {
	data, statusCode := func() ([]byte, int) {
		order := r.URL.Query().Get("sort")
		if order != "" && order != "natural" {
			return []byte(fmt.Sprintf("unknown sort order %q", order)),
				http.StatusBadRequest
		}
		a, statusCode, err := s.attachment(r)
		if err != nil {
			return []byte(err.Error()), statusCode
		}
		c, err := s.resolver.Catalog(a)
		if err != nil {
			return []byte(fmt.Sprintf("error reading metadata of attachment %d: %v", a.ID, err)),
				http.StatusInternalServerError
		}
		sizes := make([]model.Variant, 0, len(c.Sizes))
		for _, v := range c.Sizes {
			sizes = append(sizes, resolver.Locate(c.Original, v))
		}
		if order == "natural" {
			sort.SliceStable(sizes, func(i, j int) bool {
				return natural.Less(sizes[i].Name, sizes[j].Name)
			})
		}
		return marshal(sizes, http.StatusOK)
	}()
	response(w, data, statusCode)
}

// BatchItem is one entry of batch response, Src is nil when attachment can't
// be displayed with requested size.
type BatchItem struct {
	ID  int64            `json:"id"`
	Src *model.Downsized `json:"src"`
}

// Batch returns display data for several attachments in requested order.
func (s *Service) Batch(w http.ResponseWriter, r *http.Request) {
	data, statusCode := func() ([]byte, int) {
		ctx := r.Context()
		ids, err := idsParam(r.URL.Query().Get("ids"))
		if err != nil {
			return []byte(fmt.Sprintf("error validating ids param: %v", err)),
				http.StatusBadRequest
		}
		req, err := sizeParams(r)
		if err != nil {
			return []byte(fmt.Sprintf("error validating size params: %v", err)),
				http.StatusBadRequest
		}
		attachments, err := s.repo.GetMany(ctx, ids)
		if err != nil {
			return []byte(fmt.Sprintf("error getting attachments from db: %v", err)),
				http.StatusInternalServerError
		}

		res := make([]BatchItem, 0, len(attachments))
		for _, a := range attachments {
			item := BatchItem{ID: a.ID}
			d, ok, err := s.resolver.Downsize(ctx, a, req)
			if err != nil {
				return []byte(fmt.Sprintf("error resolving attachment %d: %v", a.ID, err)),
					http.StatusInternalServerError
			}
			if ok {
				item.Src = &d
			}
			res = append(res, item)
		}
		return marshal(res, http.StatusOK)
	}()
	response(w, data, statusCode)
}

// SelectRequest is body of Select.
type SelectRequest struct {
	Metadata json.RawMessage `json:"metadata"`
	Size     string          `json:"size"`
}

// Select picks variant for size out of posted metadata.
func (s *Service) Select(w http.ResponseWriter, r *http.Request) {
	data, statusCode := func() ([]byte, int) {
		var in SelectRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			return []byte(fmt.Sprintf("error decoding request: %v", err)),
				http.StatusBadRequest
		}
		req := model.ParseSizeRequest(in.Size)
		if req.IsEmpty() {
			return []byte(fmt.Sprintf("invalid size %q", in.Size)),
				http.StatusBadRequest
		}
		md, err := metadata.Decode(metadata.JSON, in.Metadata)
		if err != nil {
			return []byte(fmt.Sprintf("error decoding metadata: %v", err)),
				http.StatusBadRequest
		}
		sel, ok := s.resolver.SelectBestSize(md.Catalog(""), req)
		if !ok {
			return []byte(fmt.Sprintf("no stored size matches %s", req)),
				http.StatusNotFound
		}
		return marshal(sel, http.StatusOK)
	}()
	response(w, data, statusCode)
}

func (s *Service) attachment(r *http.Request) (model.Attachment, int, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return model.Attachment{}, http.StatusBadRequest, fmt.Errorf("invalid attachment id %q", mux.Vars(r)["id"])
	}
	a, err := s.repo.GetOne(r.Context(), id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Attachment{}, http.StatusNotFound, err
	}
	if err != nil {
		s.log.Error("unable to load attachment", zap.Int64("id", id), zap.Error(err))
		return model.Attachment{}, http.StatusInternalServerError, fmt.Errorf("couldn't get attachment by id: %d with error: %v", id, err)
	}
	return a, http.StatusOK, nil
}

func marshal(v interface{}, statusCode int) ([]byte, int) {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(fmt.Sprintf("error marshaling result: %v", err)),
			http.StatusInternalServerError
	}
	return b, statusCode
}

func response(w http.ResponseWriter, data []byte, statusCode int) {
	if statusCode < http.StatusBadRequest {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(statusCode)
	w.Write(data)
}

// sizeParams reads size either as name or WxH from size param, or as width
// and height params. Thumbnail is used when neither is given.
func sizeParams(r *http.Request) (model.SizeRequest, error) {
	q := r.URL.Query()
	if size := q.Get("size"); size != "" {
		req := model.ParseSizeRequest(size)
		if req.IsEmpty() {
			return model.SizeRequest{}, fmt.Errorf("invalid size %q", size)
		}
		return req, nil
	}

	ws, hs := q.Get("width"), q.Get("height")
	if ws == "" && hs == "" {
		return model.Named(defaultSize), nil
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w < 0 {
		return model.SizeRequest{}, fmt.Errorf("invalid width param")
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 {
		return model.SizeRequest{}, fmt.Errorf("invalid height param")
	}
	if w == 0 && h == 0 {
		return model.SizeRequest{}, fmt.Errorf("width and height can't both be zero")
	}
	return model.Box(w, h), nil
}

func idsParam(s string) ([]int64, error) {
	if s == "" {
		return nil, fmt.Errorf("ids param is required")
	}
	parts := strings.Split(s, ",")
	if len(parts) > maxBatch {
		return nil, fmt.Errorf("at most %d ids are allowed", maxBatch)
	}
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
