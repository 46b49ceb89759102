package model

import (
	"context"
	"errors"
)

// ErrNotFound is returned when requested attachment does not exist.
var ErrNotFound = errors.New("attachment not found")

// Attachment describes stored attachment record.
type Attachment struct {
	ID           int64
	PostType     string
	MimeType     string
	GUID         string
	AttachedFile string
	Title        string
	Excerpt      string
	Alt          string
	Metadata     []byte `json:"-"`
}

//go:generate mockgen -destination=../mock/model/attachments.go -package=mock_model github.com/attachsizer/model AttachmentsRepository

// AttachmentsRepository describes methods for loading attachments from DB.
type AttachmentsRepository interface {
	GetOne(context.Context, int64) (Attachment, error)
	GetMany(context.Context, []int64) ([]Attachment, error)
}

// Downsized describes how attachment should be displayed.
type Downsized struct {
	URL          string `json:"url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Intermediate bool   `json:"intermediate"`
}
