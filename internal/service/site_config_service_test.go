package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
)

type siteConfigRepoStub struct {
	rows    map[string]*models.SiteConfig
	nextID  int64
	inserts int
	updates int
	failKey string
	getErr  error
}

func newSiteConfigRepoStub() *siteConfigRepoStub {
	return &siteConfigRepoStub{rows: make(map[string]*models.SiteConfig)}
}

func (r *siteConfigRepoStub) Get(ctx context.Context, section, key string) (*models.SiteConfig, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	row, ok := r.rows[section+"."+key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *row
	return &cp, nil
}

func (r *siteConfigRepoStub) ListSection(ctx context.Context, section string) ([]models.SiteConfig, error) {
	out := []models.SiteConfig{}
	for _, row := range r.rows {
		if row.Section == section {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *siteConfigRepoStub) ListSections(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	for _, row := range r.rows {
		if !seen[row.Section] {
			seen[row.Section] = true
			out = append(out, row.Section)
		}
	}
	return out, nil
}

func (r *siteConfigRepoStub) Insert(ctx context.Context, cfg *models.SiteConfig) error {
	if cfg.Key == r.failKey {
		return fmt.Errorf("insert failed")
	}
	r.nextID++
	r.inserts++
	cfg.ID = r.nextID
	cp := *cfg
	r.rows[cfg.Section+"."+cfg.Key] = &cp
	return nil
}

func (r *siteConfigRepoStub) UpdateValue(ctx context.Context, id int64, value string, typ models.ConfigType, updatedBy string, updatedAt time.Time) error {
	for _, row := range r.rows {
		if row.ID == id {
			if row.Key == r.failKey {
				return fmt.Errorf("update failed")
			}
			r.updates++
			row.Value = value
			row.Type = typ
			row.UpdatedBy = &updatedBy
			row.UpdatedAt = updatedAt
			return nil
		}
	}
	return sql.ErrNoRows
}

type pageCacheStub struct {
	entries map[string][]byte
	sets    int
}

func newPageCacheStub() *pageCacheStub {
	return &pageCacheStub{entries: make(map[string][]byte)}
}

func (c *pageCacheStub) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *pageCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.sets++
	c.entries[key] = raw
	return nil
}

const testSchemaYAML = `
home:
  title:
    value: "Default Title"
    label: Judul
    sort: 2
  intro:
    value: "**Halo**"
    type: richtext
    sort: 1
  links:
    value: '[]'
    type: json
    sort: 3
`

func newSiteConfigFixture(t *testing.T) (*SiteConfigService, *siteConfigRepoStub, *pageCacheStub, *invalidatorStub) {
	t.Helper()
	schema, err := ParseConfigSchema([]byte(testSchemaYAML))
	require.NoError(t, err)
	repo := newSiteConfigRepoStub()
	pages := newPageCacheStub()
	inv := &invalidatorStub{}
	svc := NewSiteConfigService(repo, schema, pages, time.Minute, NewRevalidationService(inv, nil, nil), nil, nil)
	return svc, repo, pages, inv
}

func TestEmbeddedConfigSchemaParses(t *testing.T) {
	schema, err := DefaultConfigSchema()
	require.NoError(t, err)
	def, ok := schema.Lookup("home", "hero_title")
	require.True(t, ok)
	assert.Equal(t, models.ConfigText, def.Type)
	def, ok = schema.Lookup("contact", "socials")
	require.True(t, ok)
	assert.Equal(t, models.ConfigJSON, def.Type)
}

func TestParseConfigSchemaRejectsBadDefaults(t *testing.T) {
	_, err := ParseConfigSchema([]byte("home:\n  x:\n    type: video\n"))
	assert.Error(t, err)
	_, err = ParseConfigSchema([]byte("home:\n  x:\n    type: json\n    value: '{'\n"))
	assert.Error(t, err)
}

func TestGetValueDefaultMerge(t *testing.T) {
	svc, repo, _, _ := newSiteConfigFixture(t)
	ctx := context.Background()

	triples := []struct{ section, key, fallback string }{
		{"home", "title", "Default Title"},
		{"home", "missing", ""},
		{"footer", "copyright", "fallback ©"},
	}
	for _, tc := range triples {
		got, err := svc.GetValue(ctx, tc.section, tc.key, tc.fallback)
		require.NoError(t, err)
		assert.Equal(t, tc.fallback, got)
	}

	for i, tc := range triples {
		stored := fmt.Sprintf("stored-%d", i)
		_, err := svc.SetValue(ctx, dto.SetConfigRequest{Section: tc.section, Key: tc.key, Value: stored}, admin)
		require.NoError(t, err)
		got, err := svc.GetValue(ctx, tc.section, tc.key, tc.fallback)
		require.NoError(t, err)
		assert.Equal(t, stored, got)
	}
	assert.Equal(t, 3, repo.inserts)
}

func TestGetValueReportsStorageErrors(t *testing.T) {
	svc, repo, _, _ := newSiteConfigFixture(t)
	repo.getErr = errBoom
	got, err := svc.GetValue(context.Background(), "home", "title", "fb")
	assert.Error(t, err)
	assert.Equal(t, "fb", got)
}

func TestSetValueInsertsThenUpdatesInPlace(t *testing.T) {
	svc, repo, _, inv := newSiteConfigFixture(t)
	ctx := context.Background()

	first, err := svc.SetValue(ctx, dto.SetConfigRequest{Section: "home", Key: "title", Value: "Satu"}, admin)
	require.NoError(t, err)
	assert.Equal(t, "Judul", first.Label)
	assert.Equal(t, models.ConfigText, first.Type)
	require.NotNil(t, first.UpdatedBy)
	assert.Equal(t, "u-admin", *first.UpdatedBy)

	_, err = svc.SetValue(ctx, dto.SetConfigRequest{Section: "home", Key: "title", Value: "Dua"}, member1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.inserts)
	assert.Equal(t, 1, repo.updates)
	row := repo.rows["home.title"]
	assert.Equal(t, "Dua", row.Value)
	assert.Equal(t, "u-member", *row.UpdatedBy)
	assert.Equal(t, []string{"page:home", "page:home:*", "page:home", "page:home:*"}, inv.patterns)
}

func TestSetValueValidation(t *testing.T) {
	svc, repo, _, _ := newSiteConfigFixture(t)
	ctx := context.Background()

	_, err := svc.SetValue(ctx, dto.SetConfigRequest{Section: "home", Key: "title", Value: "x"}, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	_, err = svc.SetValue(ctx, dto.SetConfigRequest{Section: "home", Key: "links", Value: "{oops"}, admin)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.SetValue(ctx, dto.SetConfigRequest{Section: "", Key: "title", Value: "x"}, admin)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.SetValue(ctx, dto.SetConfigRequest{Section: "home", Key: "title", Value: "x", Type: "video"}, admin)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, repo.inserts)
}

func TestGetSectionExcludesOrphans(t *testing.T) {
	svc, _, _, _ := newSiteConfigFixture(t)
	ctx := context.Background()

	_, err := svc.SetValue(ctx, dto.SetConfigRequest{Section: "home", Key: "title", Value: "Override"}, admin)
	require.NoError(t, err)
	_, err = svc.SetValue(ctx, dto.SetConfigRequest{Section: "home", Key: "orphan", Value: "hidden"}, admin)
	require.NoError(t, err)

	section, err := svc.GetSection(ctx, "home")
	require.NoError(t, err)
	require.Len(t, section.Entries, 3)
	assert.Equal(t, "intro", section.Entries[0].Key)
	assert.True(t, section.Entries[0].IsDefault)
	assert.Equal(t, "title", section.Entries[1].Key)
	assert.Equal(t, "Override", section.Entries[1].Value)
	assert.False(t, section.Entries[1].IsDefault)
	assert.Equal(t, "links", section.Entries[2].Key)

	sections, err := svc.ListSections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, sections)

	_, err = svc.GetEntry(ctx, "home", "nope")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestBatchSetKeepsEarlierWritesOnFailure(t *testing.T) {
	svc, repo, _, inv := newSiteConfigFixture(t)
	repo.failKey = "intro"

	result, err := svc.BatchSet(context.Background(), []dto.SetConfigRequest{
		{Section: "home", Key: "title", Value: "A"},
		{Section: "home", Key: "intro", Value: "B"},
		{Section: "home", Key: "links", Value: "not json"},
		{Section: "about", Key: "vision", Value: "C"},
	}, admin)
	assert.ErrorIs(t, err, appErrors.ErrPartialFailure)
	require.NotNil(t, result)
	assert.Equal(t, []string{"home.title", "about.vision"}, result.Updated)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, "intro", result.Failed[0].Key)
	assert.Equal(t, "links", result.Failed[1].Key)

	assert.Equal(t, "A", repo.rows["home.title"].Value)
	assert.Equal(t, []string{"page:about", "page:about:*", "page:home", "page:home:*"}, inv.patterns)

	_, err = svc.BatchSet(context.Background(), []dto.SetConfigRequest{{Section: "home", Key: "title", Value: "x"}}, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestRenderPageRendersAndCaches(t *testing.T) {
	svc, _, pages, _ := newSiteConfigFixture(t)
	ctx := context.Background()

	_, err := svc.SetValue(ctx, dto.SetConfigRequest{Section: "home", Key: "links", Value: `[{"href":"/"}]`}, admin)
	require.NoError(t, err)

	page, err := svc.RenderPage(ctx, "home")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"href":"/"}]`, string(page.Values["links"]))
	assert.JSONEq(t, `"Default Title"`, string(page.Values["title"]))

	var intro string
	require.NoError(t, json.Unmarshal(page.Values["intro"], &intro))
	assert.Contains(t, intro, "<strong>Halo</strong>")
	assert.Equal(t, 1, pages.sets)
	assert.False(t, page.FromCache)

	page, err = svc.RenderPage(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, 1, pages.sets)
	assert.True(t, page.FromCache)

	_, err = svc.RenderPage(ctx, "unknown")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRenderPageTrimsSectionBeforeCaching(t *testing.T) {
	svc, _, pages, _ := newSiteConfigFixture(t)
	ctx := context.Background()

	page, err := svc.RenderPage(ctx, " home ")
	require.NoError(t, err)
	assert.Equal(t, "home", page.Section)
	_, stored := pages.entries[PageKey("home")]
	assert.True(t, stored)

	page, err = svc.RenderPage(ctx, "home")
	require.NoError(t, err)
	assert.True(t, page.FromCache)
	assert.Equal(t, 1, pages.sets)
	assert.Len(t, pages.entries, 1)
}

func TestPreviewPageBypassesCache(t *testing.T) {
	svc, _, pages, _ := newSiteConfigFixture(t)
	ctx := context.Background()

	_, err := svc.RenderPage(ctx, "home")
	require.NoError(t, err)
	_, err = svc.SetValue(ctx, dto.SetConfigRequest{Section: "home", Key: "title", Value: "Judul Baru"}, admin)
	require.NoError(t, err)

	cached, err := svc.RenderPage(ctx, "home")
	require.NoError(t, err)
	assert.True(t, cached.FromCache)
	assert.JSONEq(t, `"Default Title"`, string(cached.Values["title"]))

	preview, err := svc.PreviewPage(ctx, "home", admin)
	require.NoError(t, err)
	assert.False(t, preview.FromCache)
	assert.JSONEq(t, `"Judul Baru"`, string(preview.Values["title"]))
	assert.Equal(t, 1, pages.sets)

	_, err = svc.PreviewPage(ctx, "home", member1)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = svc.PreviewPage(ctx, "home", nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
