package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
	"github.com/noah-isme/ormawa-api/pkg/export"
)

// ExportFile is a rendered report ready to be served.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

var workItemExportHeaders = []string{"Judul", "Status", "Mulai", "Selesai", "Divisi", "PIC", "Progres"}

// Export renders the scoped items of kind as a CSV or PDF report.
func (s *WorkItemService) Export(ctx context.Context, kind models.WorkKind, format export.Format, filter models.WorkItemFilter, actor *models.JWTClaims) (*ExportFile, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !kind.Valid() {
		return nil, invalidf("jenis tidak valid")
	}
	filter.Kind = kind
	if err := validateFilter(&filter); err != nil {
		return nil, err
	}
	scopeFilter(&filter, actor)

	items, err := s.items.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "Gagal memuat data")
	}
	withProgress(items)

	data := export.Dataset{
		Title:   "Laporan " + kindLabel(kind),
		Headers: workItemExportHeaders,
		Rows:    make([][]string, 0, len(items)),
	}
	for _, it := range items {
		end := "-"
		if it.EndDate != nil {
			end = it.EndDate.Format("2006-01-02")
		}
		data.Rows = append(data.Rows, []string{
			it.Title,
			string(it.Status),
			it.StartDate.Format("2006-01-02"),
			end,
			strconv.FormatInt(it.DivisionID, 10),
			it.PICUserID,
			strconv.Itoa(it.Progress) + "%",
		})
	}

	body, err := export.Render(format, data)
	if err != nil {
		s.logger.Error("render work item export failed", zap.String("kind", string(kind)), zap.Error(err))
		return nil, appErrors.Internal(err, "Gagal membuat laporan")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("laporan-%s-%s.%s", kind, time.Now().UTC().Format("20060102"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func kindLabel(kind models.WorkKind) string {
	if kind == models.WorkKindProgram {
		return "Program"
	}
	return "Proker"
}
