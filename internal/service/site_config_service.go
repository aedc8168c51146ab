package service

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
	"github.com/noah-isme/ormawa-api/pkg/richtext"
)

//go:embed cms_defaults.yaml
var cmsDefaultsYAML []byte

// ConfigDefault is the compiled-in definition of one CMS key.
type ConfigDefault struct {
	Value       string            `yaml:"value"`
	Type        models.ConfigType `yaml:"type"`
	Label       string            `yaml:"label"`
	Description string            `yaml:"description"`
	Sort        int               `yaml:"sort"`
}

// ConfigSchema maps section → key → default.
type ConfigSchema map[string]map[string]ConfigDefault

// ParseConfigSchema decodes a YAML schema. Missing types default to text.
func ParseConfigSchema(data []byte) (ConfigSchema, error) {
	schema := ConfigSchema{}
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse cms schema: %w", err)
	}
	for section, keys := range schema {
		for key, def := range keys {
			if def.Type == "" {
				def.Type = models.ConfigText
			}
			if !def.Type.Valid() {
				return nil, fmt.Errorf("cms schema %s.%s: unknown type %q", section, key, def.Type)
			}
			if def.Type == models.ConfigJSON && !json.Valid([]byte(def.Value)) {
				return nil, fmt.Errorf("cms schema %s.%s: invalid json default", section, key)
			}
			keys[key] = def
		}
	}
	return schema, nil
}

// DefaultConfigSchema returns the embedded schema.
func DefaultConfigSchema() (ConfigSchema, error) {
	return ParseConfigSchema(cmsDefaultsYAML)
}

// Lookup returns the default of section.key.
func (s ConfigSchema) Lookup(section, key string) (ConfigDefault, bool) {
	def, ok := s[section][key]
	return def, ok
}

type siteConfigRepository interface {
	Get(ctx context.Context, section, key string) (*models.SiteConfig, error)
	ListSection(ctx context.Context, section string) ([]models.SiteConfig, error)
	ListSections(ctx context.Context) ([]string, error)
	Insert(ctx context.Context, cfg *models.SiteConfig) error
	UpdateValue(ctx context.Context, id int64, value string, typ models.ConfigType, updatedBy string, updatedAt time.Time) error
}

type pageCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// SiteConfigService is the CMS store. Stored rows override compiled
// defaults; the schema alone defines which keys exist.
type SiteConfigService struct {
	repo        siteConfigRepository
	schema      ConfigSchema
	pages       pageCache
	pageTTL     time.Duration
	revalidator *RevalidationService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewSiteConfigService wires the service. pages may be nil.
func NewSiteConfigService(repo siteConfigRepository, schema ConfigSchema, pages pageCache, pageTTL time.Duration,
	revalidator *RevalidationService, validate *validator.Validate, logger *zap.Logger) *SiteConfigService {
	if schema == nil {
		schema = ConfigSchema{}
	}
	return &SiteConfigService{
		repo:        repo,
		schema:      schema,
		pages:       pages,
		pageTTL:     pageTTL,
		revalidator: revalidator,
		validator:   orValidator(validate),
		logger:      orNop(logger),
		now:         time.Now,
	}
}

// GetValue returns the stored value of section.key or fallback when no row exists.
func (s *SiteConfigService) GetValue(ctx context.Context, section, key, fallback string) (string, error) {
	row, err := s.repo.Get(ctx, section, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fallback, nil
		}
		s.logger.Warn("load site config failed", zap.String("section", section), zap.String("key", key), zap.Error(err))
		return fallback, appErrors.Internal(err, "Gagal memuat konfigurasi")
	}
	return row.Value, nil
}

// GetEntry is GetValue with the schema default as fallback.
func (s *SiteConfigService) GetEntry(ctx context.Context, section, key string) (*dto.ConfigEntry, error) {
	def, known := s.schema.Lookup(section, key)
	row, err := s.repo.Get(ctx, section, key)
	switch {
	case err == nil:
		entry := entryFromRow(*row, def, known)
		return &entry, nil
	case errors.Is(err, sql.ErrNoRows) && known:
		entry := entryFromDefault(section, key, def)
		return &entry, nil
	case errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Clone(appErrors.ErrNotFound, "konfigurasi tidak ditemukan")
	default:
		return nil, appErrors.Internal(err, "Gagal memuat konfigurasi")
	}
}

// GetSection merges the defaults of section with stored overrides. Stored
// keys missing from the schema are left out.
func (s *SiteConfigService) GetSection(ctx context.Context, section string) (*dto.ConfigSection, error) {
	section = strings.TrimSpace(section)
	if section == "" {
		return nil, invalidf(appErrors.ErrValidation.Message)
	}
	rows, err := s.repo.ListSection(ctx, section)
	if err != nil {
		return nil, appErrors.Internal(err, "Gagal memuat konfigurasi")
	}
	stored := make(map[string]models.SiteConfig, len(rows))
	for _, row := range rows {
		stored[row.Key] = row
	}

	defaults := s.schema[section]
	out := &dto.ConfigSection{Section: section, Entries: make([]dto.ConfigEntry, 0, len(defaults))}
	for key, def := range defaults {
		if row, ok := stored[key]; ok {
			out.Entries = append(out.Entries, entryFromRow(row, def, true))
			continue
		}
		out.Entries = append(out.Entries, entryFromDefault(section, key, def))
	}
	sort.Slice(out.Entries, func(i, j int) bool {
		if out.Entries[i].SortOrder != out.Entries[j].SortOrder {
			return out.Entries[i].SortOrder < out.Entries[j].SortOrder
		}
		return out.Entries[i].Key < out.Entries[j].Key
	})
	return out, nil
}

// ListSections returns schema sections plus any section that only exists in storage.
func (s *SiteConfigService) ListSections(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{}, len(s.schema))
	for section := range s.schema {
		seen[section] = struct{}{}
	}
	stored, err := s.repo.ListSections(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "Gagal memuat konfigurasi")
	}
	for _, section := range stored {
		seen[section] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for section := range seen {
		out = append(out, section)
	}
	sort.Strings(out)
	return out, nil
}

// SetValue inserts section.key when no row exists and updates it in place
// otherwise. Unknown keys are stored but never rendered.
func (s *SiteConfigService) SetValue(ctx context.Context, req dto.SetConfigRequest, actor *models.JWTClaims) (*dto.ConfigEntry, error) {
	entry, err := s.write(ctx, req, actor)
	if err != nil {
		return nil, err
	}
	s.revalidator.Revalidate(ctx, entry.Section)
	return entry, nil
}

// BatchSet writes items in order without a transaction. Earlier writes stay
// when a later one fails; the result lists both sides.
func (s *SiteConfigService) BatchSet(ctx context.Context, items []dto.SetConfigRequest, actor *models.JWTClaims) (*dto.BatchResult, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if len(items) == 0 {
		return nil, invalidf(appErrors.ErrValidation.Message)
	}

	result := &dto.BatchResult{Updated: []string{}, Failed: []dto.BatchFailure{}}
	touched := make(map[string]struct{})
	for _, item := range items {
		entry, err := s.write(ctx, item, actor)
		if err != nil {
			result.Failed = append(result.Failed, dto.BatchFailure{
				Section: item.Section,
				Key:     item.Key,
				Error:   appErrors.FromError(err).Message,
			})
			continue
		}
		result.Updated = append(result.Updated, entry.Section+"."+entry.Key)
		touched[entry.Section] = struct{}{}
	}

	sections := make([]string, 0, len(touched))
	for section := range touched {
		sections = append(sections, section)
	}
	sort.Strings(sections)
	s.revalidator.Revalidate(ctx, sections...)

	if len(result.Failed) > 0 {
		s.logger.Warn("site config batch partially failed", zap.Int("updated", len(result.Updated)), zap.Int("failed", len(result.Failed)))
		return result, appErrors.ErrPartialFailure
	}
	return result, nil
}

// RenderPage returns the render-ready values of section, served from the
// page cache when present.
func (s *SiteConfigService) RenderPage(ctx context.Context, section string) (*dto.PagePayload, error) {
	section = strings.TrimSpace(section)
	key := PageKey(section)
	if s.pages != nil {
		var cached dto.PagePayload
		if hit, err := s.pages.Get(ctx, key, &cached); err == nil && hit {
			cached.FromCache = true
			return &cached, nil
		}
	}

	payload, err := s.render(ctx, section)
	if err != nil {
		return nil, err
	}
	if s.pages != nil {
		_ = s.pages.Set(ctx, key, payload, s.pageTTL)
	}
	return payload, nil
}

// PreviewPage renders section from the store, skipping the page cache in
// both directions. Only CMS editors may preview.
func (s *SiteConfigService) PreviewPage(ctx context.Context, section string, actor *models.JWTClaims) (*dto.PagePayload, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.Role.Elevated() {
		return nil, appErrors.ErrForbidden
	}
	return s.render(ctx, strings.TrimSpace(section))
}

func (s *SiteConfigService) render(ctx context.Context, section string) (*dto.PagePayload, error) {
	merged, err := s.GetSection(ctx, section)
	if err != nil {
		return nil, err
	}
	if len(merged.Entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "halaman tidak ditemukan")
	}

	payload := &dto.PagePayload{
		Section:    merged.Section,
		Values:     make(map[string]json.RawMessage, len(merged.Entries)),
		RenderedAt: s.now().UTC(),
	}
	for _, entry := range merged.Entries {
		raw, err := renderValue(entry)
		if err != nil {
			s.logger.Warn("render cms value failed", zap.String("section", entry.Section), zap.String("key", entry.Key), zap.Error(err))
			raw, _ = json.Marshal(entry.Value)
		}
		payload.Values[entry.Key] = raw
	}
	return payload, nil
}

func (s *SiteConfigService) write(ctx context.Context, req dto.SetConfigRequest, actor *models.JWTClaims) (*dto.ConfigEntry, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req.Section = strings.TrimSpace(req.Section)
	req.Key = strings.TrimSpace(req.Key)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	if req.Type != "" && !req.Type.Valid() {
		return nil, invalidf("tipe konfigurasi tidak valid")
	}

	def, known := s.schema.Lookup(req.Section, req.Key)
	existing, err := s.repo.Get(ctx, req.Section, req.Key)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error("load site config failed", zap.String("section", req.Section), zap.String("key", req.Key), zap.Error(err))
		return nil, appErrors.Internal(err, "Gagal menyimpan konfigurasi")
	}

	typ := req.Type
	switch {
	case typ != "":
	case existing != nil:
		typ = existing.Type
	case known:
		typ = def.Type
	default:
		typ = models.ConfigText
	}
	if typ == models.ConfigJSON && !json.Valid([]byte(req.Value)) {
		return nil, invalidf("nilai JSON tidak valid")
	}

	now := s.now().UTC()
	updater := actor.UserID
	if existing == nil {
		row := &models.SiteConfig{
			Section:     req.Section,
			Key:         req.Key,
			Value:       req.Value,
			Type:        typ,
			Label:       def.Label,
			Description: def.Description,
			SortOrder:   def.Sort,
			UpdatedBy:   &updater,
			UpdatedAt:   now,
		}
		if err := s.repo.Insert(ctx, row); err != nil {
			s.logger.Error("insert site config failed", zap.String("section", req.Section), zap.String("key", req.Key), zap.Error(err))
			return nil, appErrors.Internal(err, "Gagal menyimpan konfigurasi")
		}
		if !known {
			s.logger.Info("site config key outside schema stored", zap.String("section", req.Section), zap.String("key", req.Key))
		}
		entry := entryFromRow(*row, def, known)
		return &entry, nil
	}

	if err := s.repo.UpdateValue(ctx, existing.ID, req.Value, typ, updater, now); err != nil {
		s.logger.Error("update site config failed", zap.Int64("id", existing.ID), zap.Error(err))
		return nil, notFoundOr(err, "konfigurasi tidak ditemukan", "Gagal menyimpan konfigurasi")
	}
	existing.Value = req.Value
	existing.Type = typ
	existing.UpdatedBy = &updater
	existing.UpdatedAt = now
	entry := entryFromRow(*existing, def, known)
	return &entry, nil
}

func entryFromDefault(section, key string, def ConfigDefault) dto.ConfigEntry {
	return dto.ConfigEntry{
		Section:     section,
		Key:         key,
		Value:       def.Value,
		Type:        def.Type,
		Label:       def.Label,
		Description: def.Description,
		SortOrder:   def.Sort,
		IsDefault:   true,
	}
}

func entryFromRow(row models.SiteConfig, def ConfigDefault, known bool) dto.ConfigEntry {
	entry := dto.ConfigEntry{
		Section:     row.Section,
		Key:         row.Key,
		Value:       row.Value,
		Type:        row.Type,
		Label:       row.Label,
		Description: row.Description,
		SortOrder:   row.SortOrder,
		UpdatedBy:   row.UpdatedBy,
	}
	if !row.UpdatedAt.IsZero() {
		updated := row.UpdatedAt
		entry.UpdatedAt = &updated
	}
	if known {
		entry.Label = def.Label
		entry.Description = def.Description
		entry.SortOrder = def.Sort
	}
	return entry
}

func renderValue(entry dto.ConfigEntry) (json.RawMessage, error) {
	switch entry.Type {
	case models.ConfigJSON:
		if !json.Valid([]byte(entry.Value)) {
			return nil, fmt.Errorf("invalid json value")
		}
		return json.RawMessage(entry.Value), nil
	case models.ConfigRichtext:
		html, err := richtext.ToHTML(entry.Value)
		if err != nil {
			return nil, err
		}
		return json.Marshal(html)
	default:
		return json.Marshal(entry.Value)
	}
}
