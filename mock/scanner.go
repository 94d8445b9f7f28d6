package mock

import (
	"context"
	"sync/atomic"

	"gitlab.com/trackerker/trackerk"
)

// Scanner fake
type Scanner struct {
	ScanFn    func(ctx context.Context, req trackerk.ScanRequest) (*trackerk.ScanResult, error)
	ScanCalls int32
}

// Scan the request
func (s *Scanner) Scan(ctx context.Context, req trackerk.ScanRequest) (*trackerk.ScanResult, error) {
	atomic.AddInt32(&s.ScanCalls, 1)
	return s.ScanFn(ctx, req)
}

// MakeMockScanner that fails the first failures calls with err, then succeeds
func MakeMockScanner(failures int32, err error) *Scanner {
	s := &Scanner{}
	s.ScanFn = func(ctx context.Context, req trackerk.ScanRequest) (*trackerk.ScanResult, error) {
		if atomic.LoadInt32(&s.ScanCalls) <= failures {
			return nil, err
		}
		return &trackerk.ScanResult{URL: req.URL, Score: 100, Grade: trackerk.GradeA}, nil
	}
	return s
}
