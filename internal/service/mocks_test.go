package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/blaisecz/zepp-sleep-report/pkg/dateutil"
)

func mustDate(t *testing.T, s string) dateutil.Date {
	t.Helper()
	d, err := dateutil.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

// MockSummarySource serves canned per-day payloads and errors.
type MockSummarySource struct {
	payloads map[string]string
	errs     map[string]error
	calls    []string
}

func NewMockSummarySource() *MockSummarySource {
	return &MockSummarySource{
		payloads: make(map[string]string),
		errs:     make(map[string]error),
	}
}

func (m *MockSummarySource) FetchDay(_ context.Context, date dateutil.Date) (string, error) {
	m.calls = append(m.calls, date.String())
	if err, ok := m.errs[date.String()]; ok {
		return "", err
	}
	return m.payloads[date.String()], nil
}

// encodeSummary wraps a JSON document the way the vendor API does.
func encodeSummary(jsonDoc string) string {
	return base64.StdEncoding.EncodeToString([]byte(jsonDoc))
}
