package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/ormawa-api/internal/models"
)

func TestPageWindowMatchesReportedPagination(t *testing.T) {
	tests := []struct {
		page, pageSize    int
		wantLimit, wantOf int
	}{
		{0, 0, 20, 0},
		{2, 10, 10, 10},
		{2, 100, 100, 100},
		{2, 101, 100, 100},
		{3, 150, 100, 200},
		{-1, -5, 20, 0},
	}
	for _, tc := range tests {
		limit, offset := pageWindow(tc.page, tc.pageSize)
		assert.Equal(t, tc.wantLimit, limit, "page=%d size=%d", tc.page, tc.pageSize)
		assert.Equal(t, tc.wantOf, offset, "page=%d size=%d", tc.page, tc.pageSize)

		_, reported, _ := models.NormalizePage(tc.page, tc.pageSize)
		assert.Equal(t, reported, limit)
	}
}
