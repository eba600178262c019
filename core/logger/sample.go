package logger

import (
	"strconv"
	"strings"
	"sync"
)

// ratioSampler lets through numerator out of every denominator events.
// A zero ratio disables sampling (everything passes).
type ratioSampler struct {
	mu       sync.Mutex
	num, den int
	seen     int
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

func (s *ratioSampler) Set(num, den int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if num <= 0 || den <= 0 {
		num, den = 0, 0
	}
	s.num, s.den, s.seen = min(num, den), den, 0
}

func (s *ratioSampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.den == 0 {
		return true
	}
	s.seen = s.seen%s.den + 1
	return s.seen <= s.num
}

// parseRatio accepts "n/d" or a bare "d" meaning 1/d.
func parseRatio(s string) (int, int) {
	s = strings.TrimSpace(s)
	if a, b, ok := strings.Cut(s, "/"); ok {
		num, err1 := strconv.Atoi(strings.TrimSpace(a))
		den, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 == nil && err2 == nil {
			return num, den
		}
		return 0, 0
	}
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return 1, v
	}
	return 0, 0
}
