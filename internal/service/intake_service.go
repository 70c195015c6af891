package service

import (
	"context"
	"errors"
	"fmt"

	"grievanceportal/internal/cache"
	"grievanceportal/internal/catalog"
	"grievanceportal/internal/metrics"
	"grievanceportal/internal/model"
	"grievanceportal/internal/wizard"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for unknown or expired intake sessions
var ErrSessionNotFound = errors.New("intake session not found")

// IntakeService runs intake wizards. REST sessions are snapshotted in Redis
// between requests; chat sessions keep their controller in memory.
type IntakeService struct {
	catalog    *catalog.Catalog
	classifier wizard.Classifier
	sessions   cache.SessionCache
	complaints *ComplaintService
	metrics    *metrics.Metrics
	logger     *zap.Logger
	opts       []wizard.Option
}

// NewIntakeService creates a new intake service
func NewIntakeService(
	cat *catalog.Catalog,
	cls wizard.Classifier,
	sessions cache.SessionCache,
	complaints *ComplaintService,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts ...wizard.Option,
) *IntakeService {
	if m == nil {
		m = metrics.NewNop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeService{
		catalog:    cat,
		classifier: cls,
		sessions:   sessions,
		complaints: complaints,
		metrics:    m,
		logger:     logger,
		opts:       opts,
	}
}

// Catalog returns the question catalog the service runs on
func (s *IntakeService) Catalog() *catalog.Catalog {
	return s.catalog
}

// StartSession opens a stored session for a department and language
func (s *IntakeService) StartSession(ctx context.Context, req *model.StartSessionRequest) (*model.SessionView, error) {
	c, err := s.OpenChat(req.Department, req.Language)
	if err != nil {
		return nil, err
	}

	snap := c.Snapshot()
	snap.ID = uuid.New().String()
	if err := s.sessions.Set(ctx, &snap); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return s.view(&snap, false), nil
}

// GetSession returns the current state of a stored session
func (s *IntakeService) GetSession(ctx context.Context, id string) (*model.SessionView, error) {
	snap, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	busy, err := s.sessions.IsBusy(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(snap, busy), nil
}

// SubmitAnswer applies one answer to a stored session. The Redis busy lock
// spans the whole load/answer/save cycle, so a concurrent answer on the same
// session fails with wizard.ErrBusy. On a *wizard.ValidationError the
// unchanged session is returned alongside the error.
//
// A completing answer is filed only after the completed snapshot is stored.
// If that write fails the session stays on its last step with nothing filed,
// and a retry cannot produce a second complaint.
func (s *IntakeService) SubmitAnswer(ctx context.Context, id, answer string) (*model.SessionView, error) {
	var out *model.SessionView
	err := s.withLock(ctx, id, func(c *wizard.Controller) error {
		outcome, err := s.submit(ctx, c, answer)
		if err != nil {
			var verr *wizard.ValidationError
			if errors.As(err, &verr) {
				snap := c.Snapshot()
				snap.ID = id
				out = s.view(&snap, false)
			}
			return err
		}

		snap := c.Snapshot()
		snap.ID = id
		if err := s.sessions.Set(ctx, &snap); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
		s.file(ctx, outcome.Record)
		out = s.view(&snap, false)
		return nil
	})
	return out, err
}

// RestartSession resets a stored session to its first question
func (s *IntakeService) RestartSession(ctx context.Context, id string) (*model.SessionView, error) {
	var out *model.SessionView
	err := s.withLock(ctx, id, func(c *wizard.Controller) error {
		if err := c.Restart(); err != nil {
			return err
		}
		s.metrics.IntakeSessionsStarted.WithLabelValues(c.Department(), c.Language()).Inc()

		snap := c.Snapshot()
		snap.ID = id
		if err := s.sessions.Set(ctx, &snap); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
		out = s.view(&snap, false)
		return nil
	})
	return out, err
}

// OpenChat starts an in-memory wizard for a chat connection
func (s *IntakeService) OpenChat(department, language string) (*wizard.Controller, error) {
	c := wizard.New(s.catalog, s.classifier, s.opts...)
	if err := c.Start(department, language); err != nil {
		return nil, err
	}
	s.metrics.IntakeSessionsStarted.WithLabelValues(c.Department(), c.Language()).Inc()
	return c, nil
}

// AnswerChat submits an answer to c, counting rejections and filing the
// complaint when the answer completes the session.
func (s *IntakeService) AnswerChat(ctx context.Context, c *wizard.Controller, answer string) (*wizard.Outcome, error) {
	out, err := s.submit(ctx, c, answer)
	if err != nil {
		return nil, err
	}
	s.file(ctx, out.Record)
	return out, nil
}

func (s *IntakeService) submit(ctx context.Context, c *wizard.Controller, answer string) (*wizard.Outcome, error) {
	out, err := c.SubmitAnswer(ctx, answer)
	if err != nil {
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			s.metrics.ValidationFailuresTotal.WithLabelValues(c.Department(), verr.QuestionID).Inc()
		}
		return nil, err
	}
	return out, nil
}

func (s *IntakeService) file(ctx context.Context, rec *model.CompletionRecord) {
	if rec == nil {
		return
	}
	if err := s.complaints.File(ctx, rec); err != nil {
		// The citizen already holds the id, so a filing failure is only logged.
		s.logger.Error("failed to file complaint", zap.String("complaint_id", rec.ID), zap.Error(err))
	}
}

func (s *IntakeService) withLock(ctx context.Context, id string, fn func(c *wizard.Controller) error) error {
	// Unknown ids never take a lock.
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	token, ok, err := s.sessions.AcquireBusy(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to lock session: %w", err)
	}
	if !ok {
		return wizard.ErrBusy
	}
	defer func() {
		if err := s.sessions.ReleaseBusy(context.WithoutCancel(ctx), id, token); err != nil {
			s.logger.Error("failed to release session lock", zap.String("session_id", id), zap.Error(err))
		}
	}()

	// Reload under the lock; the earlier read may predate another writer.
	snap, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	c, err := wizard.Restore(s.catalog, s.classifier, *snap, s.opts...)
	if err != nil {
		s.logger.Error("stored session is unusable", zap.String("session_id", id), zap.Error(err))
		return err
	}
	return fn(c)
}

func (s *IntakeService) load(ctx context.Context, id string) (*model.SessionSnapshot, error) {
	snap, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if snap == nil {
		return nil, ErrSessionNotFound
	}
	return snap, nil
}

func (s *IntakeService) view(snap *model.SessionSnapshot, busy bool) *model.SessionView {
	total := 0
	if dept, err := s.catalog.Department(snap.Department); err == nil {
		total = dept.Len()
	}
	return &model.SessionView{
		ID:         snap.ID,
		Department: snap.Department,
		Language:   snap.Language,
		Step:       snap.Step,
		Total:      total,
		Complete:   snap.Record != nil,
		Busy:       busy,
		Responses:  snap.Responses,
		Transcript: snap.Transcript,
		Record:     snap.Record,
	}
}
