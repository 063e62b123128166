package sheets

import (
	"context"
	"sync"
)

// MockWriter records exported reports in memory. WriteFunc, when set,
// decides what Write returns.
type MockWriter struct {
	WriteFunc func(ctx context.Context, r *Report) error

	mu      sync.Mutex
	reports []*Report
}

var _ ReportWriter = (*MockWriter)(nil)

// NewMockWriter returns an empty MockWriter.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write records r.
func (m *MockWriter) Write(ctx context.Context, r *Report) error {
	m.mu.Lock()
	m.reports = append(m.reports, r)
	fn := m.WriteFunc
	m.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(ctx, r)
}

// CallCount is the number of Write calls since the last Reset.
func (m *MockWriter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports)
}

// LastReport is the most recent report written, or nil.
func (m *MockWriter) LastReport() *Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.reports) == 0 {
		return nil
	}
	return m.reports[len(m.reports)-1]
}

// Reset forgets recorded writes.
func (m *MockWriter) Reset() {
	m.mu.Lock()
	m.reports = nil
	m.mu.Unlock()
}
