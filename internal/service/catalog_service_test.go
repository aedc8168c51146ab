package service

import (
	"context"
	"database/sql"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
	"github.com/noah-isme/ormawa-api/pkg/storage"
)

type brandRepoStub struct {
	items  map[int64]*models.BrandKitItem
	nextID int64
}

func newBrandRepoStub() *brandRepoStub {
	return &brandRepoStub{items: make(map[int64]*models.BrandKitItem)}
}

func (r *brandRepoStub) Create(ctx context.Context, item *models.BrandKitItem) error {
	r.nextID++
	item.ID = r.nextID
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *brandRepoStub) GetByID(ctx context.Context, id int64) (*models.BrandKitItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *item
	return &cp, nil
}

func (r *brandRepoStub) List(ctx context.Context, category models.BrandCategory) ([]models.BrandKitItem, error) {
	out := []models.BrandKitItem{}
	for _, item := range r.items {
		if category == "" || item.Category == category {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *brandRepoStub) Update(ctx context.Context, item *models.BrandKitItem) error {
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *brandRepoStub) Delete(ctx context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

func TestBrandKitCreateUpdateDownloadDelete(t *testing.T) {
	repo := newBrandRepoStub()
	store := newObjectStoreStub()
	signer := storage.NewSignedURLSigner("secret", 10*time.Minute)
	svc := NewBrandKitService(repo, store, signer, "/files/download", UploadPolicy{}, nil, nil, nil)
	ctx := context.Background()

	logo, err := svc.Create(ctx, dto.CreateBrandKitRequest{Name: "Logo Utama", Category: models.BrandLogo},
		&BrandFile{Name: "logo.png", Data: pngHeader}, admin)
	require.NoError(t, err)
	require.NotNil(t, logo.StorageKey)
	assert.True(t, strings.HasPrefix(*logo.StorageKey, "logo/"))
	assert.Equal(t, "image/png", *logo.MimeType)

	dl, err := svc.Download(ctx, logo.ID, member1)
	require.NoError(t, err)
	parsed, err := url.Parse(dl.DownloadURL)
	require.NoError(t, err)
	assert.Equal(t, "/files/download", parsed.Path)
	bucket, key, err := signer.Parse(parsed.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, BucketBrandKit, bucket)
	assert.Equal(t, *logo.StorageKey, key)

	oldKey := *logo.StorageKey
	updated, err := svc.Update(ctx, logo.ID, dto.UpdateBrandKitRequest{}, &BrandFile{Name: "logo-v2.png", Data: pngHeader}, admin)
	require.NoError(t, err)
	assert.NotEqual(t, oldKey, *updated.StorageKey)
	assert.Contains(t, store.removed, BucketBrandKit+"/"+oldKey)

	require.NoError(t, svc.Delete(ctx, logo.ID, admin))
	assert.Contains(t, store.removed, BucketBrandKit+"/"+*updated.StorageKey)
	_, err = svc.Get(ctx, logo.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestBrandKitRules(t *testing.T) {
	svc := NewBrandKitService(newBrandRepoStub(), newObjectStoreStub(), nil, "", UploadPolicy{}, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateBrandKitRequest{Name: "Biru", Category: models.BrandColor, Value: strPtr("#1E40AF")}, nil, member1)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = svc.Create(ctx, dto.CreateBrandKitRequest{Name: "Biru", Category: models.BrandColor, Value: strPtr("#1E40AF")}, nil, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	_, err = svc.Create(ctx, dto.CreateBrandKitRequest{Name: "Biru", Category: models.BrandColor, Value: strPtr("blue")}, nil, admin)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Create(ctx, dto.CreateBrandKitRequest{Name: "Font", Category: models.BrandFont}, nil, admin)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	color, err := svc.Create(ctx, dto.CreateBrandKitRequest{Name: "Biru", Category: models.BrandColor, Value: strPtr("#1E40AF")}, nil, admin)
	require.NoError(t, err)
	_, err = svc.Download(ctx, color.ID, admin)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	items, err := svc.List(ctx, models.BrandColor)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	_, err = svc.List(ctx, "banner")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

type campaignRepoStub struct {
	items  map[int64]*models.Campaign
	nextID int64
}

func (r *campaignRepoStub) Create(ctx context.Context, c *models.Campaign) error {
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *campaignRepoStub) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (r *campaignRepoStub) List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, int, error) {
	out := []models.Campaign{}
	for _, c := range r.items {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (r *campaignRepoStub) Update(ctx context.Context, c *models.Campaign) error {
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *campaignRepoStub) Delete(ctx context.Context, id int64) error {
	delete(r.items, id)
	return nil
}

func TestCampaignLifecycle(t *testing.T) {
	f := newWorkFixture()
	program := f.seed(models.WorkKindProgram, models.ProgramPlanned, 1)
	proker := f.seed(models.WorkKindProker, models.ProkerCreated, 1)
	repo := &campaignRepoStub{items: make(map[int64]*models.Campaign)}
	svc := NewCampaignService(repo, f.items, f.revalidator, nil, nil)
	ctx := context.Background()

	c, err := svc.Create(ctx, dto.CreateCampaignRequest{Title: "Teaser", Platform: " Instagram ", ProgramID: &program.ID}, member1)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignDraft, c.Status)
	assert.Equal(t, "instagram", c.Platform)
	assert.Equal(t, int64(1), *c.DivisionID)

	_, err = svc.Create(ctx, dto.CreateCampaignRequest{Title: "x", Platform: "tiktok", ProgramID: &proker.ID}, member1)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Create(ctx, dto.CreateCampaignRequest{Title: "x", Platform: "tiktok", Status: models.CampaignScheduled}, member1)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Create(ctx, dto.CreateCampaignRequest{Title: "x", Platform: "tiktok"}, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	scheduled := models.CampaignScheduled
	_, err = svc.Update(ctx, c.ID, dto.UpdateCampaignRequest{Status: &scheduled}, member1)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	updated, err := svc.Update(ctx, c.ID, dto.UpdateCampaignRequest{Status: &scheduled, PublishAt: strPtr("2025-06-01")}, member1)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignScheduled, updated.Status)

	_, err = svc.Update(ctx, c.ID, dto.UpdateCampaignRequest{Title: strPtr("Hack")}, member2)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, c.ID, member1))
	_, err = svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Contains(t, f.pages.patterns, "page:campaigns")
	assert.Contains(t, f.pages.patterns, "page:campaigns:*")
}
