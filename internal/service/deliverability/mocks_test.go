package deliverability

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ignite/deliverability-engine/internal/domain"
)

// mockOracle returns a fixed score and records every lookup.
type mockOracle struct {
	mu    sync.Mutex
	score float64
	err   error
	calls []string
}

func (m *mockOracle) ScoreDomain(_ context.Context, d string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, d)
	return m.score, m.err
}

type mockMX struct {
	ok    bool
	err   error
	calls int
}

func (m *mockMX) HasMX(_ context.Context, _ string) (bool, error) {
	m.calls++
	return m.ok, m.err
}

type mockSession struct {
	ok    bool
	err   error
	panic bool
	calls int
}

func (m *mockSession) CanConnect(_ context.Context, _ string) (bool, error) {
	m.calls++
	if m.panic {
		panic("connection pool exhausted")
	}
	return m.ok, m.err
}

type mockTransport struct {
	mu   sync.Mutex
	id   string
	err  error
	sent []domain.OutboundMessage
}

func (m *mockTransport) Send(_ context.Context, msg domain.OutboundMessage) (domain.SendReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	if m.err != nil {
		return domain.SendReceipt{}, m.err
	}
	return domain.SendReceipt{MessageID: m.id, SentAt: time.Now()}, nil
}

type mockRenderer struct {
	err  error
	data map[string]any
}

func (m *mockRenderer) Render(t domain.EmailTemplate, data map[string]any) (domain.EmailTemplate, error) {
	m.data = data
	if m.err != nil {
		return t, m.err
	}
	t.Subject = "rendered: " + t.Subject
	return t, nil
}

// mockEvents is an in-memory event store keyed by id.
type mockEvents struct {
	mu      sync.Mutex
	records []domain.SentEmailRecord
	err     error
	filters []CountFilter
}

func (m *mockEvents) CountSent(_ context.Context, f CountFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, f)
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, r := range m.records {
		if r.SentAt.Before(f.Since) {
			continue
		}
		if len(f.Statuses) > 0 && !hasStatus(f.Statuses, r.Status) {
			continue
		}
		n++
	}
	return n, nil
}

func (m *mockEvents) GetSentByID(_ context.Context, id string) (*domain.SentEmailRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.records {
		if m.records[i].ID == id {
			r := m.records[i]
			return &r, nil
		}
	}
	return nil, nil
}

func hasStatus(list []domain.SentStatus, s domain.SentStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type mockSubscribers struct {
	n   int
	err error
}

func (m *mockSubscribers) CountUnsubscribed(_ context.Context, _ time.Time) (int, error) {
	return m.n, m.err
}

var errBoom = errors.New("boom")
