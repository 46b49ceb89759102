package attachments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/attachsizer/model"
)

const (
	selectAttachment = `SELECT
	 p.id,
	 p.post_type,
	 p.post_mime_type,
	 p.guid,
	 p.post_title,
	 p.post_excerpt,
	 COALESCE(f.meta_value, '') AS attached_file,
	 COALESCE(a.meta_value, '') AS alt,
	 COALESCE(m.meta_value, '') AS metadata
	 FROM posts p
	 LEFT JOIN postmeta f ON f.post_id = p.id AND f.meta_key = '_wp_attached_file'
	 LEFT JOIN postmeta a ON a.post_id = p.id AND a.meta_key = '_wp_attachment_image_alt'
	 LEFT JOIN postmeta m ON m.post_id = p.id AND m.meta_key = '_wp_attachment_metadata'`

	oneByID   = selectAttachment + " WHERE p.id = $1"
	manyByIDs = selectAttachment + ` WHERE p.id = ANY($1)
	 AND p.post_type = 'attachment'
	 AND p.post_mime_type LIKE 'image/%'`
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// Repo contains db session.
type Repo struct {
	db *sql.DB
}

// NewRepo creates new Repo struct with db session.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db}
}

// GetOne returns attachment by it's ID.
func (r *Repo) GetOne(ctx context.Context, id int64) (model.Attachment, error) {
	const errMsg = "error getting attachment by ID: %d, error: %w"
	a, err := scanAttachment(r.db.QueryRowContext(ctx, oneByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Attachment{}, fmt.Errorf(errMsg, id, model.ErrNotFound)
	}
	if err != nil {
		return model.Attachment{}, fmt.Errorf(errMsg, id, err)
	}
	return a, nil
}

// GetMany returns image attachments in order of ids. Unknown ids and posts
// that are not images are skipped.
func (r *Repo) GetMany(ctx context.Context, ids []int64) ([]model.Attachment, error) {
	const errMsg = "error getting attachments %v from DB: %w"
	if len(ids) == 0 {
		return []model.Attachment{}, nil
	}

	rows, err := r.db.QueryContext(ctx, manyByIDs, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf(errMsg, ids, err)
	}
	defer rows.Close()

	found := []model.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf(errMsg, ids, err)
		}
		found = append(found, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsg, ids, err)
	}
	return orderByIDs(found, ids), nil
}

func scanAttachment(s scanner) (model.Attachment, error) {
	var a model.Attachment
	if err := s.Scan(
		&a.ID,
		&a.PostType,
		&a.MimeType,
		&a.GUID,
		&a.Title,
		&a.Excerpt,
		&a.AttachedFile,
		&a.Alt,
		&a.Metadata,
	); err != nil {
		return model.Attachment{}, err
	}
	return a, nil
}

// orderByIDs arranges found the way ids are listed, repeated ids repeat the
// attachment.
func orderByIDs(found []model.Attachment, ids []int64) []model.Attachment {
	byID := make(map[int64]model.Attachment, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	res := make([]model.Attachment, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			res = append(res, a)
		}
	}
	return res
}
