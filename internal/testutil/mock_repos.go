package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"grievanceportal/internal/model"
	"grievanceportal/internal/repository"
)

// MockUserRepo is a thread-safe in-memory implementation of repository.UserRepo for testing.
type MockUserRepo struct {
	mu sync.Mutex

	Users map[string]*model.User
	next  int

	CreateErr error
	GetErr    error

	CreateCalls int
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{Users: make(map[string]*model.User)}
}

func (m *MockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, u := range m.Users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		m.next++
		user.ID = fmt.Sprintf("user-%d", m.next)
	}
	stored := *user
	m.Users[user.ID] = &stored
	return nil
}

func (m *MockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email == email })
}

func (m *MockUserRepo) GetByEmailAndType(_ context.Context, email, userType string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email == email && u.UserType == userType })
}

func (m *MockUserRepo) EnsureIndexes(context.Context) error { return nil }

func (m *MockUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, u := range m.Users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// MockReportRepo is a thread-safe in-memory implementation of repository.ReportRepo for testing.
type MockReportRepo struct {
	mu sync.Mutex

	Reports map[string]*model.ReportExport
	next    int

	Err error
}

func NewMockReportRepo() *MockReportRepo {
	return &MockReportRepo{Reports: make(map[string]*model.ReportExport)}
}

func (m *MockReportRepo) Create(_ context.Context, report *model.ReportExport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if report.ID == "" {
		m.next++
		report.ID = fmt.Sprintf("report-%d", m.next)
	}
	cp := *report
	m.Reports[report.ID] = &cp
	return nil
}

func (m *MockReportRepo) ListByUser(_ context.Context, userID string, kind model.ReportKind) ([]*model.ReportExport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []*model.ReportExport{}
	for _, r := range m.Reports {
		if r.UserID == userID && (kind == "" || r.Kind == kind) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExportedAt.After(out[j].ExportedAt) })
	return out, nil
}

func (m *MockReportRepo) Delete(_ context.Context, id, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	r, ok := m.Reports[id]
	if !ok || r.UserID != userID {
		return false, nil
	}
	delete(m.Reports, id)
	return true, nil
}

// RecordingBroadcaster captures staff broadcasts.
type RecordingBroadcaster struct {
	mu       sync.Mutex
	Messages []BroadcastMessage
}

// BroadcastMessage is one captured broadcast.
type BroadcastMessage struct {
	Type    string
	Payload interface{}
}

func (b *RecordingBroadcaster) BroadcastToStaff(msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Messages = append(b.Messages, BroadcastMessage{Type: msgType, Payload: payload})
}

// Types returns the captured message types in order.
func (b *RecordingBroadcaster) Types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.Messages))
	for i, m := range b.Messages {
		out[i] = m.Type
	}
	return out
}
