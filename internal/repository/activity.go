// internal/repository/activity.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"job-recommender/internal/common/logger"
	"job-recommender/internal/common/metrics"
	"job-recommender/internal/models"
)

const (
	activityQuery = `SELECT job_id, COALESCE(SUM(time_spent), 0) FROM seeker_activity WHERE email = $1 GROUP BY job_id`

	activityKeyPrefix = "activity:seeker:"

	DefaultActivityTTL = time.Minute
)

var ErrActivityQuery = errors.New("activity query failed")

// ActivityRepository aggregates seeker view time per job from Postgres,
// with an optional Redis cache in front of it.
type ActivityRepository struct {
	db     *sql.DB
	cache  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

// NewActivityRepository builds the repository. A nil cache disables caching.
func NewActivityRepository(db *sql.DB, cache redis.Cmdable, ttl time.Duration, log logger.Logger) *ActivityRepository {
	if ttl <= 0 {
		ttl = DefaultActivityTTL
	}
	return &ActivityRepository{
		db:     db,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// ActivityKey returns the cache key of a seeker. Dots cannot appear in the
// key segment, so they become commas.
func ActivityKey(email string) string {
	return activityKeyPrefix + strings.ReplaceAll(normalizeEmail(email), ".", ",")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FetchActivity returns job_id to total seconds for the seeker. A seeker with
// no recorded views gets an empty, non-nil map.
func (r *ActivityRepository) FetchActivity(ctx context.Context, email string) (models.Activity, error) {
	defer metrics.ObserveStage("fetch_activity", time.Now())

	email = normalizeEmail(email)
	key := ActivityKey(email)

	if activity, ok := r.readCache(ctx, key); ok {
		return activity, nil
	}

	activity, err := r.query(ctx, email)
	if err != nil {
		return nil, err
	}

	r.writeCache(ctx, key, activity)
	return activity, nil
}

func (r *ActivityRepository) query(ctx context.Context, email string) (models.Activity, error) {
	rows, err := r.db.QueryContext(ctx, activityQuery, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrActivityQuery, err)
	}
	defer rows.Close()

	activity := make(models.Activity)
	for rows.Next() {
		var (
			jobID   string
			seconds float64
		)
		if err := rows.Scan(&jobID, &seconds); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrActivityQuery, err)
		}
		jobID = strings.TrimSpace(jobID)
		if jobID == "" {
			continue
		}
		activity[jobID] += seconds
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrActivityQuery, err)
	}
	return activity, nil
}

func (r *ActivityRepository) readCache(ctx context.Context, key string) (models.Activity, bool) {
	if r.cache == nil {
		return nil, false
	}

	val, err := r.cache.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		r.logger.Warn("activity cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil, false
	}

	activity := make(models.Activity)
	if err := json.Unmarshal([]byte(val), &activity); err != nil {
		r.logger.Warn("discarding corrupt activity cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil, false
	}
	return activity, true
}

func (r *ActivityRepository) writeCache(ctx context.Context, key string, activity models.Activity) {
	if r.cache == nil {
		return
	}

	data, err := json.Marshal(activity)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Warn("activity cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (r *ActivityRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
