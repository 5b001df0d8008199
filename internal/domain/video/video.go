// Package video resolves video-level sermon metadata from titles and upload dates.
package video

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/sermondex/internal/domain"
)

// Known service types.
const (
	SundayService   = "주일예배"
	RevivalMeeting  = "부흥회"
	NewYearDawnPray = "신년특별새벽기도회"
)

var (
	koreanDateRe = regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`)
	isoDateRe    = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
	exactDateRe  = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
)

// Metadata is the video-level part of chunk metadata.
type Metadata struct {
	VideoID     string
	Title       string
	ServiceType string
	ServiceDate string
	UploadDate  string
}

// ServiceType detects the service type keyword in a title, or returns "".
func ServiceType(title string) string {
	switch {
	case strings.Contains(title, SundayService):
		return SundayService
	case strings.Contains(title, RevivalMeeting):
		return RevivalMeeting
	case strings.Contains(title, NewYearDawnPray), strings.Contains(title, "신년특별 새벽기도회"):
		return NewYearDawnPray
	default:
		return ""
	}
}

// ServiceDate reads "2024년 1월 7일" (zero-padded) or "2024-1-7" (verbatim)
// from the title, falling back to the date part of uploadDate.
func ServiceDate(title, uploadDate string) string {
	if m := koreanDateRe.FindStringSubmatch(title); m != nil {
		return m[1] + "-" + pad2(m[2]) + "-" + pad2(m[3])
	}
	if m := isoDateRe.FindString(title); m != "" {
		return m
	}
	date, _, _ := strings.Cut(strings.TrimSpace(uploadDate), "T")
	return date
}

// Resolve fills ServiceType and ServiceDate when they are missing.
func Resolve(m Metadata) Metadata {
	if m.ServiceType == "" {
		m.ServiceType = ServiceType(m.Title)
	}
	if m.ServiceDate == "" {
		m.ServiceDate = ServiceDate(m.Title, m.UploadDate)
	}
	return m
}

// DateNum converts "YYYY-M-D" to the sortable number YYYYMMDD.
func DateNum(date string) (int, error) {
	m := exactDateRe.FindStringSubmatch(strings.TrimSpace(date))
	if m == nil {
		return 0, fmt.Errorf("%w: date %q must be YYYY-MM-DD", domain.ErrInvalidInput, date)
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return 0, fmt.Errorf("%w: date %q out of range", domain.ErrInvalidInput, date)
	}
	return y*10000 + mo*100 + d, nil
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
