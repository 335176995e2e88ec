package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skinTrack/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ReportCache stores generated tracking reports as JSON, one key per session.
type ReportCache struct {
	client *redis.Client
}

func NewReportCache(client *redis.Client) *ReportCache {
	return &ReportCache{client: client}
}

func reportKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("report:session:%s", sessionID)
}

func (c *ReportCache) Get(ctx context.Context, sessionID uuid.UUID) (*domain.TrackingReport, error) {
	val, err := c.client.Get(ctx, reportKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrReportNotCached
		}
		return nil, fmt.Errorf("failed to read cached report: %w", err)
	}

	var report domain.TrackingReport
	if err := json.Unmarshal(val, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}

	return &report, nil
}

func (c *ReportCache) Set(ctx context.Context, report *domain.TrackingReport, ttl time.Duration) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := c.client.Set(ctx, reportKey(report.SessionID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}

	return nil
}

func (c *ReportCache) Invalidate(ctx context.Context, sessionID uuid.UUID) error {
	if err := c.client.Del(ctx, reportKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached report: %w", err)
	}

	return nil
}
