package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gogotex/guestbook/internal/guestbook"
	"github.com/gogotex/guestbook/pkg/logger"
	"github.com/gogotex/guestbook/pkg/metrics"
)

// TimeLayout is the wire format of export timestamps: ISO-8601, UTC, microseconds.
const TimeLayout = "2006-01-02T15:04:05.000000"

// DefaultSince is the last_time used when a poll does not supply one.
var DefaultSince = time.Date(2000, 1, 1, 0, 0, 0, 100*int(time.Microsecond), time.UTC)

// ParseTime parses an export timestamp. The fractional part is optional and
// holds at most six digits, so FormatTime gives back the same instant.
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: last_time %q: %v", ErrBadRequest, s, err)
	}
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > 6 {
		return time.Time{}, fmt.Errorf("%w: last_time %q: more than microsecond precision", ErrBadRequest, s)
	}
	return t, nil
}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// SeriesQuery selects one numeric column of a guestbook after a point in time.
type SeriesQuery struct {
	Guestbook string
	// Index is the comma-separated column to read. Out of range reads column 0.
	Index int
	// Since is exclusive.
	Since time.Time
}

// Series is the export payload. D and T are parallel; LT is the latest greeting
// date seen, parseable or not, and is what the client should poll with next.
type Series struct {
	D  []float64
	T  []int64
	LT time.Time
}

func (s Series) MarshalJSON() ([]byte, error) {
	out := struct {
		D  []float64 `json:"d"`
		T  []int64   `json:"t"`
		LT string    `json:"lt"`
	}{D: s.D, T: s.T, LT: FormatTime(s.LT)}
	if out.D == nil {
		out.D = []float64{}
	}
	if out.T == nil {
		out.T = []int64{}
	}
	return json.Marshal(out)
}

// Series reads up to SeriesLimit greetings dated strictly after q.Since, oldest
// first, and extracts column q.Index of each as a number.
func (s *Service) Series(ctx context.Context, q SeriesQuery) (*Series, error) {
	book := guestbook.Key(q.Guestbook)
	list, err := s.repo.Since(ctx, book, q.Since, SeriesLimit)
	if err != nil {
		return nil, fmt.Errorf("series %q: %w", book, err)
	}
	out := &Series{D: []float64{}, T: []int64{}, LT: q.Since}
	for _, g := range list {
		tok := pickToken(g.Content, q.Index)
		if v, ok := parseValue(tok); ok {
			out.D = append(out.D, v)
			out.T = append(out.T, g.Date.UnixMilli())
		} else {
			logger.Debugf("series %q: greeting %s column %d is not a number: %q", book, g.ID, q.Index, tok)
			metrics.SeriesSkipped.Inc()
		}
		if g.Date.After(out.LT) {
			out.LT = g.Date
		}
	}
	metrics.SeriesPoints.Add(float64(len(out.D)))
	return out, nil
}

func pickToken(content string, index int) string {
	parts := strings.Split(content, ",")
	if index < 0 || index >= len(parts) {
		index = 0
	}
	return parts[index]
}

// parseValue rejects NaN and infinities along with non-numbers; JSON cannot carry them.
func parseValue(tok string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
