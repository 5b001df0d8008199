package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/sermondex/internal/domain"
)

var (
	clockMSRe   = regexp.MustCompile(`^(\d+):(\d+)$`)
	clockHMSRe  = regexp.MustCompile(`^(\d+):(\d+):(\d+)$`)
	koHoursRe   = regexp.MustCompile(`(\d+)시간`)
	koMinutesRe = regexp.MustCompile(`(\d+)분`)
	koSecondsRe = regexp.MustCompile(`(\d+)초`)
	digitsRe    = regexp.MustCompile(`^\d+$`)
)

// ParseTimecode reads "38:40", "1:14:40", "1시간 2분 3초" style values
// and bare seconds.
func ParseTimecode(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty timecode", domain.ErrInvalidInput)
	}

	if m := clockMSRe.FindStringSubmatch(s); m != nil {
		return seconds(atoi(m[1])*60 + atoi(m[2])), nil
	}
	if m := clockHMSRe.FindStringSubmatch(s); m != nil {
		return seconds(atoi(m[1])*3600 + atoi(m[2])*60 + atoi(m[3])), nil
	}

	var total int64
	var found bool
	for _, u := range []struct {
		re   *regexp.Regexp
		mult int64
	}{{koHoursRe, 3600}, {koMinutesRe, 60}, {koSecondsRe, 1}} {
		if m := u.re.FindStringSubmatch(s); m != nil {
			total += atoi(m[1]) * u.mult
			found = true
		}
	}
	if found {
		return seconds(total), nil
	}

	if digitsRe.MatchString(s) {
		return seconds(atoi(s)), nil
	}
	return 0, fmt.Errorf("%w: invalid timecode %q", domain.ErrInvalidInput, s)
}

// FormatTimecode renders d as "H:MM:SS", or "M:SS" under an hour.
// Sub-second precision is dropped.
func FormatTimecode(d time.Duration) string {
	total := int64(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func seconds(n int64) time.Duration { return time.Duration(n) * time.Second }

func atoi(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
