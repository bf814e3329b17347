package projection

import (
	"testing"
	"time"
)

func TestUnitKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		publishedAt time.Time
		want        int
	}{
		{
			name:        "utc midday",
			publishedAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
			want:        20260820,
		},
		{
			name:        "utc evening rolls into the next korean day",
			publishedAt: time.Date(2026, 8, 20, 15, 30, 0, 0, time.UTC),
			want:        20260821,
		},
		{
			name:        "just before the korean midnight boundary",
			publishedAt: time.Date(2026, 8, 20, 14, 59, 59, 0, time.UTC),
			want:        20260820,
		},
		{
			name:        "already in korean time",
			publishedAt: time.Date(2026, 8, 21, 0, 5, 0, 0, time.FixedZone("KST", 9*60*60)),
			want:        20260821,
		},
		{
			name:        "year boundary",
			publishedAt: time.Date(2026, 12, 31, 16, 0, 0, 0, time.UTC),
			want:        20270101,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := UnitKey(tt.publishedAt); got != tt.want {
				t.Errorf("UnitKey(%v) = %d, want %d", tt.publishedAt, got, tt.want)
			}
		})
	}
}

func TestUnitKeysAreSortable(t *testing.T) {
	t.Parallel()

	earlier := UnitKey(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	later := UnitKey(time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC))
	if earlier >= later {
		t.Errorf("unit keys must sort chronologically: %d >= %d", earlier, later)
	}
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want int
	}{
		{0, maxBatchLimit},
		{-5, maxBatchLimit},
		{1, 1},
		{300, 300},
		{301, maxBatchLimit},
		{10000, maxBatchLimit},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestScanWindowFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit, want int
	}{
		{1, minScanWindow},
		{30, minScanWindow},
		{50, 100},
		{160, maxScanWindow},
		{300, maxScanWindow},
	}
	for _, tt := range tests {
		if got := scanWindowFor(tt.limit); got != tt.want {
			t.Errorf("scanWindowFor(%d) = %d, want %d", tt.limit, got, tt.want)
		}
	}
}

func TestResultErrorCap(t *testing.T) {
	t.Parallel()

	r := &Result{}
	for i := 0; i < 25; i++ {
		r.recordError(errString("boom"))
	}
	if r.Failed != 25 {
		t.Errorf("failed = %d, want 25", r.Failed)
	}
	if len(r.Errors) != maxErrorSamples {
		t.Errorf("error samples = %d, want %d", len(r.Errors), maxErrorSamples)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
