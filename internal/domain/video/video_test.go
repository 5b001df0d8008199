package video

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/sermondex/internal/domain"
)

func TestServiceType(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"2024년 1월 7일 주일예배 설교", SundayService},
		{"가을 부흥회 둘째날", RevivalMeeting},
		{"2024 신년특별새벽기도회 1일차", NewYearDawnPray},
		{"2024 신년특별 새벽기도회 3일차", NewYearDawnPray},
		{"주일예배 부흥회", SundayService},
		{"수요 성경공부", ""},
	}
	for _, tt := range tests {
		if got := ServiceType(tt.title); got != tt.want {
			t.Errorf("ServiceType(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestServiceDate(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		upload string
		want   string
	}{
		{"korean padded", "2024년 1월 7일 주일예배", "", "2024-01-07"},
		{"korean no spaces", "2023년12월25일 성탄예배", "", "2023-12-25"},
		{"iso verbatim", "주일예배 2024-1-7", "2020-01-01", "2024-1-7"},
		{"upload fallback", "주일예배", "2024-02-04T10:00:00Z", "2024-02-04"},
		{"nothing", "주일예배", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ServiceDate(tt.title, tt.upload); got != tt.want {
				t.Errorf("ServiceDate = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_KeepsProvidedFields(t *testing.T) {
	got := Resolve(Metadata{
		VideoID:     "v1",
		Title:       "2024년 1월 7일 주일예배",
		ServiceType: RevivalMeeting,
	})
	if got.ServiceType != RevivalMeeting {
		t.Errorf("expected provided service type kept, got %q", got.ServiceType)
	}
	if got.ServiceDate != "2024-01-07" {
		t.Errorf("expected date from title, got %q", got.ServiceDate)
	}
}

func TestDateNum(t *testing.T) {
	n, err := DateNum("2024-1-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 20240107 {
		t.Errorf("expected 20240107, got %d", n)
	}
	for _, bad := range []string{"", "2024/01/07", "2024-13-01", "24-01-01"} {
		if _, err := DateNum(bad); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("DateNum(%q): expected ErrInvalidInput, got %v", bad, err)
		}
	}
}
