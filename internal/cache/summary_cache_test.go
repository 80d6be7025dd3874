package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/blaisecz/zepp-sleep-report/pkg/dateutil"
)

type stubSource struct {
	payload string
	err     error
	calls   int
}

func (s *stubSource) FetchDay(_ context.Context, _ dateutil.Date) (string, error) {
	s.calls++
	return s.payload, s.err
}

func TestSourceWithoutCachePassesThrough(t *testing.T) {
	stub := &stubSource{payload: "QUJD"}
	source := NewSource(nil, stub)

	date, err := dateutil.ParseDate("2024-01-01")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}

	got, err := source.FetchDay(context.Background(), date)
	if err != nil {
		t.Fatalf("FetchDay: %v", err)
	}
	if got != "QUJD" || stub.calls != 1 {
		t.Fatalf("passthrough broken: got %q after %d calls", got, stub.calls)
	}
}

func TestSourceWithoutCachePropagatesErrors(t *testing.T) {
	wantErr := errors.New("boom")
	source := NewSource(nil, &stubSource{err: wantErr})

	date, err := dateutil.ParseDate("2024-01-01")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}

	if _, err := source.FetchDay(context.Background(), date); !errors.Is(err, wantErr) {
		t.Fatalf("expected underlying error, got %v", err)
	}
}
