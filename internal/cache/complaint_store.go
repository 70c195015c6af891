package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"grievanceportal/internal/model"

	"github.com/redis/go-redis/v9"
)

// ErrComplaintNotFound is returned when a status change targets an unknown id
var ErrComplaintNotFound = errors.New("complaint not found")

const (
	complaintIndexKey = "complaints:index"

	// maxStatusRetries bounds optimistic retries when concurrent status
	// changes race on one record
	maxStatusRetries = 16
)

// ErrStatusConflict is returned when a status change keeps losing races
var ErrStatusConflict = errors.New("complaint status changed concurrently")

// ReportStore persists completion records for tracking
type ReportStore interface {
	Save(ctx context.Context, rec *model.CompletionRecord) error
	Get(ctx context.Context, id string) (*model.CompletionRecord, error)
	// List returns up to limit records, newest first
	List(ctx context.Context, limit int) ([]*model.CompletionRecord, error)
	// Search returns ids containing substr, case-insensitively, newest first
	Search(ctx context.Context, substr string, limit int) ([]string, error)
	// UpdateStatus returns the previous status alongside the updated record
	UpdateStatus(ctx context.Context, id string, status model.ComplaintStatus) (model.ComplaintStatus, *model.CompletionRecord, error)
}

type complaintStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewComplaintStore creates a Redis-backed ReportStore. Records and their
// index entries expire ttl after filing.
func NewComplaintStore(client *redis.Client, ttl time.Duration) ReportStore {
	return &complaintStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *complaintStore) key(id string) string {
	return fmt.Sprintf("complaint:%s", id)
}

func (s *complaintStore) Save(ctx context.Context, rec *model.CompletionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	cutoff := s.now().Add(-s.ttl).UnixMilli()
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(rec.ID), data, s.ttl)
		pipe.ZAdd(ctx, complaintIndexKey, redis.Z{
			Score:  float64(rec.CreatedAt.UnixMilli()),
			Member: rec.ID,
		})
		pipe.ZRemRangeByScore(ctx, complaintIndexKey, "-inf", "("+strconv.FormatInt(cutoff, 10))
		return nil
	})
	return err
}

func (s *complaintStore) Get(ctx context.Context, id string) (*model.CompletionRecord, error) {
	data, err := s.client.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec model.CompletionRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *complaintStore) List(ctx context.Context, limit int) ([]*model.CompletionRecord, error) {
	if limit <= 0 {
		return []*model.CompletionRecord{}, nil
	}
	ids, err := s.client.ZRevRange(ctx, complaintIndexKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*model.CompletionRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec != nil { // expired between index and record
			records = append(records, rec)
		}
	}
	return records, nil
}

func (s *complaintStore) Search(ctx context.Context, substr string, limit int) ([]string, error) {
	ids, err := s.client.ZRevRange(ctx, complaintIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(substr))
	matches := []string{}
	for _, id := range ids {
		if limit > 0 && len(matches) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(id), needle) {
			matches = append(matches, id)
		}
	}
	return matches, nil
}

// UpdateStatus swaps the status under WATCH, so every caller observes the
// status its own write replaced.
func (s *complaintStore) UpdateStatus(ctx context.Context, id string, status model.ComplaintStatus) (model.ComplaintStatus, *model.CompletionRecord, error) {
	key := s.key(id)
	var (
		prev model.ComplaintStatus
		rec  *model.CompletionRecord
	)

	swap := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrComplaintNotFound
		}
		if err != nil {
			return err
		}

		var current model.CompletionRecord
		if err := json.Unmarshal([]byte(data), &current); err != nil {
			return err
		}
		prev = current.Status
		current.Status = status
		current.UpdatedAt = s.now()

		updated, err := json.Marshal(&current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		if err == nil {
			rec = &current
		}
		return err
	}

	for i := 0; i < maxStatusRetries; i++ {
		err := s.client.Watch(ctx, swap, key)
		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			return "", nil, err
		}
		return prev, rec, nil
	}
	return "", nil, ErrStatusConflict
}
