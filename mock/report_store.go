package mock

import (
	"sort"
	"sync"
	"time"

	"gitlab.com/trackerker/trackerk"
)

// ReportStore saves reports in memory
type ReportStore struct {
	InitFn     func() error
	InitCalled bool

	SaveFn     func(website string, result *trackerk.ScanResult) error
	SaveCalled bool

	ReportsFn     func(website string) ([]*trackerk.ScanResult, error)
	ReportsCalled bool

	LastScannedFn     func(website string) (time.Time, error)
	LastScannedCalled bool

	WebsitesFn     func() ([]string, error)
	WebsitesCalled bool

	CloseFn     func() error
	CloseCalled bool

	lock sync.Mutex
}

// Init the report store
func (s *ReportStore) Init() error {
	s.InitCalled = true
	return s.InitFn()
}

// Save a report
func (s *ReportStore) Save(website string, result *trackerk.ScanResult) error {
	s.lock.Lock()
	s.SaveCalled = true
	s.lock.Unlock()
	return s.SaveFn(website, result)
}

// Reports of a website
func (s *ReportStore) Reports(website string) ([]*trackerk.ScanResult, error) {
	s.ReportsCalled = true
	return s.ReportsFn(website)
}

// LastScanned time of a website
func (s *ReportStore) LastScanned(website string) (time.Time, error) {
	s.LastScannedCalled = true
	return s.LastScannedFn(website)
}

// Websites that were scanned
func (s *ReportStore) Websites() ([]string, error) {
	s.WebsitesCalled = true
	return s.WebsitesFn()
}

// Close the report store
func (s *ReportStore) Close() error {
	s.CloseCalled = true
	return s.CloseFn()
}

// MakeMockReportStore keeping saved reports in a map, notScanned is returned by
// LastScanned for websites without reports
func MakeMockReportStore(notScanned error) *ReportStore {
	s := &ReportStore{}
	reports := make(map[string][]*trackerk.ScanResult)
	scanned := make(map[string]time.Time)

	s.InitFn = func() error { return nil }
	s.CloseFn = func() error { return nil }
	s.SaveFn = func(website string, result *trackerk.ScanResult) error {
		s.lock.Lock()
		defer s.lock.Unlock()
		reports[website] = append(reports[website], result)
		scanned[website] = time.Now()
		return nil
	}
	s.ReportsFn = func(website string) ([]*trackerk.ScanResult, error) {
		s.lock.Lock()
		defer s.lock.Unlock()
		return reports[website], nil
	}
	s.LastScannedFn = func(website string) (time.Time, error) {
		s.lock.Lock()
		defer s.lock.Unlock()
		t, ok := scanned[website]
		if !ok {
			return time.Time{}, notScanned
		}
		return t, nil
	}
	s.WebsitesFn = func() ([]string, error) {
		s.lock.Lock()
		defer s.lock.Unlock()
		websites := make([]string, 0, len(scanned))
		for website := range scanned {
			websites = append(websites, website)
		}
		sort.Strings(websites)
		return websites, nil
	}
	return s
}
