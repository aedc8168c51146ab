package service

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
)

// defaultAllowedMIMEs mirrors the STORAGE_ALLOWED_MIME_TYPES default.
var defaultAllowedMIMEs = []string{"image/jpeg", "image/png", "image/gif", "image/svg+xml", "video/mp4", "application/pdf", "application/zip"}

const (
	svgWithProlog = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10" fill="#1E40AF"/></svg>`
	svgBare = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><circle cx="5" cy="5" r="4"/></svg>`
)

func testDocx(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := []struct{ name, body string }{
		{"word/document.xml", `<?xml version="1.0"?><w:document/>`},
		{"[Content_Types].xml", `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
		{"_rels/.rels", `<?xml version="1.0"?><Relationships/>`},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestUploadPolicyDetectsAllowedTypes(t *testing.T) {
	policy := UploadPolicy{MaxBytes: 1 << 20, AllowedMIMEs: defaultAllowedMIMEs}

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"svg with xml prolog", []byte(svgWithProlog), "image/svg+xml"},
		{"svg without prolog", []byte(svgBare), "image/svg+xml"},
		{"png", testPNG(t, 4, 4), "image/png"},
		{"pdf", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n"), "application/pdf"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mime, err := policy.Check(tc.data)
			require.NoError(t, err)
			assert.Equal(t, tc.want, mime)
		})
	}
}

func TestUploadPolicyAdmitsOfficeDocumentsThroughZip(t *testing.T) {
	policy := UploadPolicy{AllowedMIMEs: defaultAllowedMIMEs}

	mime, err := policy.Check(testDocx(t))
	require.NoError(t, err)
	assert.Contains(t, mime, "officedocument")
	assert.Equal(t, models.MediaDocument, MediaTypeFor(mime))
}

func TestUploadPolicyRejections(t *testing.T) {
	policy := UploadPolicy{MaxBytes: 16, AllowedMIMEs: []string{"image/*"}}

	_, err := policy.Check(nil)
	assertValidation(t, err)

	_, err = policy.Check(bytes.Repeat([]byte("a"), 17))
	assert.ErrorIs(t, err, appErrors.ErrPayloadTooLarge)

	_, err = policy.Check([]byte("just some text"))
	assertValidation(t, err)

	mime, err := UploadPolicy{}.Check([]byte("catatan rapat"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mime)
}

func TestMediaUploadAcceptsVectorAndOfficeFiles(t *testing.T) {
	repo := newMediaRepoStub()
	store := newObjectStoreStub()
	svc := NewMediaService(repo, store, nil, nil, nil, nil, MediaOptions{
		Policy:         UploadPolicy{MaxBytes: 1 << 20, AllowedMIMEs: defaultAllowedMIMEs},
		ThumbnailWidth: 64,
	})
	ctx := context.Background()

	logo, err := svc.Upload(ctx, "logo.svg", []byte(svgWithProlog), dto.UploadMediaRequest{}, member1)
	require.NoError(t, err)
	assert.Equal(t, models.MediaImage, logo.Type)
	assert.Equal(t, "image/svg+xml", logo.MimeType)
	assert.Nil(t, logo.ThumbnailURL)

	doc, err := svc.Upload(ctx, "proposal.docx", testDocx(t), dto.UploadMediaRequest{}, member1)
	require.NoError(t, err)
	assert.Equal(t, models.MediaDocument, doc.Type)
	assert.Len(t, store.objects, 2)
}

func assertValidation(t *testing.T, err error) {
	t.Helper()
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
