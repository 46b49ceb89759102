package storage

import (
	"bytes"
	"context"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Prober looks up legacy thumbnails in s3 bucket.
type Prober struct {
	s3manager  s3manageriface.DownloaderAPI
	bucketName *string
	baseDir    string
}

// New returns s3 prober. Files under baseDir are looked up by their path
// relative to it.
func New(s3manager s3manageriface.DownloaderAPI, bucketName *string, baseDir string) *Prober {
	return &Prober{s3manager: s3manager, bucketName: bucketName, baseDir: strings.TrimRight(baseDir, "/")}
}

// Probe downloads thumbnail file and decodes its stored pixel dimensions.
func (p *Prober) Probe(ctx context.Context, file, url string) (int, int, bool, error) {
	key := p.key(file)
	if key == "" {
		return 0, 0, false, nil
	}

	buf := aws.NewWriteAtBuffer(nil)
	if _, err := p.s3manager.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: p.bucketName,
		Key:    &key,
	}); err != nil {
		if isNotFound(err) {
			return 0, 0, false, nil
		}
		return 0, 0, false, fmt.Errorf("can't download %s with error: %w", key, err)
	}

	img, err := imaging.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return 0, 0, false, fmt.Errorf("error decoding %s into image: %w", key, err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy(), true, nil
}

func (p *Prober) key(file string) string {
	if p.baseDir != "" {
		file = strings.TrimPrefix(file, p.baseDir)
	}
	return strings.TrimLeft(file, "/")
}

func isNotFound(err error) bool {
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	if rerr, ok := err.(awserr.RequestFailure); ok {
		return rerr.StatusCode() == 404
	}
	return false
}
