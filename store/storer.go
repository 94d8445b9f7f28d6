package store

import (
	"time"

	"gitlab.com/trackerker/trackerk"
)

// ReportStorer persists scan results per website
type ReportStorer interface {
	Init() error
	Save(website string, result *trackerk.ScanResult) error
	Reports(website string) ([]*trackerk.ScanResult, error)
	LastScanned(website string) (time.Time, error)
	Websites() ([]string, error)
	Close() error
}
