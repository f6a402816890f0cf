package doi

import (
	"context"
	"regexp"
	"testing"
)

func TestNewFormat(t *testing.T) {
	never := func(ctx context.Context, doi string) (bool, error) { return false, nil }

	got, err := New(context.Background(), "10.15493", "ALGOA", never)
	if err != nil {
		t.Fatal(err)
	}
	want := regexp.MustCompile(`^10\.15493/ALGOA\.\d{8}$`)
	if !want.MatchString(got) {
		t.Fatalf("candidate %q does not match %s", got, want)
	}
}

func TestNewRetriesOnCollision(t *testing.T) {
	calls := 0
	taken := func(ctx context.Context, doi string) (bool, error) {
		calls++
		return calls < 3, nil
	}

	got, err := New(context.Background(), "10.15493", "ALGOA", taken)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 availability checks, got %d", calls)
	}
	if got == "" {
		t.Fatal("expected a candidate after retries")
	}
}

func TestNewPropagatesCheckError(t *testing.T) {
	boom := func(ctx context.Context, doi string) (bool, error) {
		return false, context.DeadlineExceeded
	}
	if _, err := New(context.Background(), "10.15493", "ALGOA", boom); err == nil {
		t.Fatal("expected error from availability check")
	}
}
