package cache

import (
	"context"
	"strconv"

	"grievanceportal/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	departmentCountsKey = "analytics:department"
	priorityCountsKey   = "analytics:priority"
	statusCountsKey     = "analytics:status"
	totalsKey           = "analytics:totals"

	fieldTotal     = "total"
	fieldFallbacks = "fallbacks"
)

// AnalyticsCache keeps dashboard counters in Redis hashes
type AnalyticsCache interface {
	RecordFiled(ctx context.Context, rec *model.CompletionRecord) error
	MoveStatus(ctx context.Context, from, to model.ComplaintStatus) error
	Summary(ctx context.Context) (*model.AnalyticsSummary, error)
}

type analyticsCache struct {
	client *redis.Client
}

// NewAnalyticsCache creates a new analytics cache
func NewAnalyticsCache(client *redis.Client) AnalyticsCache {
	return &analyticsCache{
		client: client,
	}
}

func (c *analyticsCache) RecordFiled(ctx context.Context, rec *model.CompletionRecord) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, departmentCountsKey, rec.Department, 1)
		pipe.HIncrBy(ctx, priorityCountsKey, string(rec.Priority), 1)
		pipe.HIncrBy(ctx, statusCountsKey, string(rec.Status), 1)
		pipe.HIncrBy(ctx, totalsKey, fieldTotal, 1)
		if rec.PriorityFallback {
			pipe.HIncrBy(ctx, totalsKey, fieldFallbacks, 1)
		}
		return nil
	})
	return err
}

func (c *analyticsCache) MoveStatus(ctx context.Context, from, to model.ComplaintStatus) error {
	if from == to {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, statusCountsKey, string(from), -1)
		pipe.HIncrBy(ctx, statusCountsKey, string(to), 1)
		return nil
	})
	return err
}

func (c *analyticsCache) Summary(ctx context.Context) (*model.AnalyticsSummary, error) {
	pipe := c.client.Pipeline()
	dept := pipe.HGetAll(ctx, departmentCountsKey)
	prio := pipe.HGetAll(ctx, priorityCountsKey)
	status := pipe.HGetAll(ctx, statusCountsKey)
	totals := pipe.HGetAll(ctx, totalsKey)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	t := parseCounts(totals.Val())
	return &model.AnalyticsSummary{
		Total:             t[fieldTotal],
		ByDepartment:      parseCounts(dept.Val()),
		ByPriority:        parseCounts(prio.Val()),
		ByStatus:          parseCounts(status.Val()),
		PriorityFallbacks: t[fieldFallbacks],
	}, nil
}

func parseCounts(raw map[string]string) map[string]int64 {
	out := make(map[string]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n == 0 {
			continue
		}
		out[k] = n
	}
	return out
}
