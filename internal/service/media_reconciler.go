package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/pkg/jobs"
	"github.com/noah-isme/ormawa-api/pkg/storage"
)

// JobPruneMedia is the queue kind of an orphan cleanup.
const JobPruneMedia = "media.prune"

type pendingMediaStore interface {
	GetByID(ctx context.Context, id int64) (*models.MediaAsset, error)
	DeletePending(ctx context.Context, id int64) error
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.MediaAsset, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// MediaReconciler removes pending media rows (and their blobs) that never
// finished uploading.
type MediaReconciler struct {
	repo     pendingMediaStore
	storage  objectStore
	queue    jobEnqueuer
	metrics  *MetricsService
	logger   *zap.Logger
	ttl      time.Duration
	interval time.Duration
	batch    int
	now      func() time.Time
}

// NewMediaReconciler builds a reconciler. ttl is how long a row may stay
// pending; interval is the ticker period used by Start.
func NewMediaReconciler(repo pendingMediaStore, store objectStore, metrics *MetricsService, logger *zap.Logger, ttl, interval time.Duration) *MediaReconciler {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &MediaReconciler{
		repo:     repo,
		storage:  store,
		metrics:  metrics,
		logger:   orNop(logger),
		ttl:      ttl,
		interval: interval,
		batch:    500,
		now:      time.Now,
	}
}

// Bind routes prune work through q. Without a queue RunOnce prunes inline.
func (r *MediaReconciler) Bind(q jobEnqueuer) {
	r.queue = q
}

// RunOnce prunes rows pending for longer than olderThan (the configured
// TTL when zero).
func (r *MediaReconciler) RunOnce(ctx context.Context, olderThan time.Duration) (dto.PruneResult, error) {
	if olderThan <= 0 {
		olderThan = r.ttl
	}
	stale, err := r.repo.ListStalePending(ctx, r.now().UTC().Add(-olderThan), r.batch)
	if err != nil {
		return dto.PruneResult{}, fmt.Errorf("list stale media: %w", err)
	}

	result := dto.PruneResult{Scanned: len(stale)}
	for _, asset := range stale {
		job := jobs.Job{Kind: JobPruneMedia, Payload: asset.ID}
		if r.queue == nil {
			if err := r.HandleJob(ctx, job); err != nil {
				r.logger.Warn("prune media failed", zap.Int64("id", asset.ID), zap.Error(err))
				continue
			}
		} else if err := r.queue.Enqueue(job); err != nil {
			r.logger.Warn("enqueue media prune failed", zap.Int64("id", asset.ID), zap.Error(err))
			continue
		}
		result.Enqueued++
	}
	if result.Scanned > 0 {
		r.logger.Info("media reconciliation", zap.Int("scanned", result.Scanned), zap.Int("enqueued", result.Enqueued))
	}
	return result, nil
}

// HandleJob is the queue handler: it re-checks the row is still pending,
// removes its blobs and deletes it.
func (r *MediaReconciler) HandleJob(ctx context.Context, job jobs.Job) error {
	id, ok := job.Payload.(int64)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Kind)
	}
	asset, err := r.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load media %d: %w", id, err)
	}
	if asset.Status != models.MediaPending {
		return nil
	}

	if asset.StorageKey != "" {
		if err := r.storage.Remove(ctx, BucketMedia, asset.StorageKey); err != nil {
			return fmt.Errorf("remove media blob %d: %w", id, err)
		}
		if err := r.storage.Remove(ctx, BucketMedia, storage.ThumbnailKey(asset.StorageKey)); err != nil {
			r.logger.Warn("remove media thumbnail failed", zap.Int64("id", id), zap.Error(err))
		}
	}
	if err := r.repo.DeletePending(ctx, id); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("delete pending media %d: %w", id, err)
	}
	r.metrics.RecordOrphanPruned()
	return nil
}

// Start runs RunOnce every interval until ctx is done.
func (r *MediaReconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := r.RunOnce(ctx, 0); err != nil {
					r.logger.Warn("media reconciliation failed", zap.Error(err))
				}
			}
		}
	}()
}
