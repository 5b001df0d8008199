package transcript

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/sermondex/internal/domain"
)

func TestParseTimecode(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"38:40", 38*time.Minute + 40*time.Second},
		{"1:14:40", time.Hour + 14*time.Minute + 40*time.Second},
		{"38분40초", 38*time.Minute + 40*time.Second},
		{"1시간 2분 3초", time.Hour + 2*time.Minute + 3*time.Second},
		{"2시간", 2 * time.Hour},
		{"45분", 45 * time.Minute},
		{"30초", 30 * time.Second},
		{"90", 90 * time.Second},
		{" 5:00 ", 5 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimecode(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseTimecode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTimecode_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1:2:3:4", "-5"} {
		if _, err := ParseTimecode(in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("ParseTimecode(%q): expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestFormatTimecode(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{65 * time.Second, "1:05"},
		{38*time.Minute + 40*time.Second, "38:40"},
		{time.Hour + 14*time.Minute + 40*time.Second, "1:14:40"},
		{1500 * time.Millisecond, "0:01"},
	}
	for _, tt := range tests {
		if got := FormatTimecode(tt.in); got != tt.want {
			t.Errorf("FormatTimecode(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClip(t *testing.T) {
	segs := []Segment{
		{Text: "a", OffsetMs: 0},
		{Text: "b", OffsetMs: 60000},
		{Text: "c", OffsetMs: 120000},
		{Text: "d", OffsetMs: 180000},
	}
	got := Clip(segs, time.Minute, 3*time.Minute)
	if len(got) != 2 || got[0].Text != "b" || got[1].Text != "c" {
		t.Errorf("unexpected clip window: %+v", got)
	}
	if got := Clip(segs, 2*time.Minute, 0); len(got) != 2 || got[1].Text != "d" {
		t.Errorf("expected open upper bound, got %+v", got)
	}
}
