package service

import (
	"context"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
)

type objectStore interface {
	Upload(ctx context.Context, bucket, key string, data []byte) (string, error)
	Remove(ctx context.Context, bucket, key string) error
}

// Storage buckets.
const (
	BucketMedia    = "media"
	BucketBrandKit = "brand-kit"
	BucketDesign   = "design-requests"
)

const mimeSVG = "image/svg+xml"

// UploadPolicy bounds what may be written to object storage.
type UploadPolicy struct {
	MaxBytes     int64
	AllowedMIMEs []string
}

// Check sniffs the content type of data and enforces size and MIME limits.
// A file passes when its detected type or any ancestor of it is allowed,
// so an allowed application/zip admits docx and xlsx as well. The returned
// type is always the most specific one.
func (p UploadPolicy) Check(data []byte) (string, error) {
	if len(data) == 0 {
		return "", invalidf("file kosong")
	}
	if p.MaxBytes > 0 && int64(len(data)) > p.MaxBytes {
		return "", appErrors.ErrPayloadTooLarge
	}
	detected := mimetype.Detect(data)
	mime := baseMIME(detected.String())
	if len(p.AllowedMIMEs) == 0 {
		return mime, nil
	}
	for m := detected; m != nil; m = m.Parent() {
		if p.allows(baseMIME(m.String())) {
			return mime, nil
		}
	}
	return "", invalidf("tipe file tidak diizinkan")
}

func (p UploadPolicy) allows(mime string) bool {
	for _, allowed := range p.AllowedMIMEs {
		if strings.EqualFold(allowed, mime) {
			return true
		}
		if strings.HasSuffix(allowed, "/*") && strings.HasPrefix(mime, strings.TrimSuffix(allowed, "*")) {
			return true
		}
	}
	return false
}

func baseMIME(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.TrimSpace(mime)
}

// objectKey builds a collision-free key that keeps the original extension.
func objectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return path.Join(prefix, uuid.NewString()+ext)
}
