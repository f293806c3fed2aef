package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starford/newsdesk/internal/testutil"
)

func TestNew_InvalidSpec(t *testing.T) {
	if _, err := New("whenever", nil, testutil.Logger()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNext(t *testing.T) {
	s, err := New("0 7 * * 1-5", nil, testutil.Logger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	friday := time.Date(2025, time.June, 20, 8, 0, 0, 0, time.UTC)
	want := time.Date(2025, time.June, 23, 7, 0, 0, 0, time.UTC)
	if got := s.Next(friday); !got.Equal(want) {
		t.Errorf("Next = %v, want %v", got, want)
	}
}

func TestRun_FiresAndSurvivesErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := 0
	s, err := New("0 7 * * *", func(context.Context) error {
		runs++
		if runs == 3 {
			cancel()
		}
		if runs == 1 {
			return errors.New("feed down")
		}
		return nil
	}, testutil.Logger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	clock := time.Date(2025, time.June, 20, 8, 0, 0, 0, time.UTC)
	var (
		waits     []time.Time
		durations []time.Duration
	)
	s.now = func() time.Time { return clock }
	s.after = func(d time.Duration) <-chan time.Time {
		durations = append(durations, d)
		clock = s.Next(clock)
		waits = append(waits, clock)
		ch := make(chan time.Time, 1)
		ch <- clock
		return ch
	}

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	if runs != 3 {
		t.Errorf("runs = %d, want 3", runs)
	}
	if len(waits) < 3 || !waits[0].Equal(time.Date(2025, time.June, 21, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("waits = %v", waits)
	}
	// Waits are measured on the scheduler's clock: Fri 08:00 to Sat 07:00,
	// then a day between runs.
	if len(durations) < 3 || durations[0] != 23*time.Hour || durations[1] != 24*time.Hour {
		t.Errorf("durations = %v", durations)
	}
}
