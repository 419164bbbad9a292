package db

import (
	"context"
	"fmt"

	"slidelab/models"
)

func (r *Repo) LogScan(ctx context.Context, actorID, actorUsername, code string, confidence float64, frames int) (*models.ScanLog, error) {
	log := &models.ScanLog{
		ActorID:       actorID,
		ActorUsername: actorUsername,
		Code:          code,
		Confidence:    confidence,
		Frames:        frames,
	}
	if err := r.DB.WithContext(ctx).Create(log).Error; err != nil {
		return nil, fmt.Errorf("insert scan log: %w", err)
	}
	return log, nil
}

func (r *Repo) ListScanLogs(ctx context.Context, limit int) ([]models.ScanLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []models.ScanLog
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
