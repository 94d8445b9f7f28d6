package store

import (
	"os"
	"time"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/trackerker/trackerk"
)

// ErrNotScanned is returned by LastScanned for a website with no reports
var ErrNotScanned = errors.New("website has not been scanned")

// ReportStore saves scan results per website along with when it was last scanned
type ReportStore struct {
	Store    *badger.DB
	filepath string
}

// NewReportStore at filepath, an empty filepath keeps everything in memory
func NewReportStore(filepath string) *ReportStore {
	return &ReportStore{filepath: filepath}
}

// Init the report storage
func (s *ReportStore) Init() error {
	var err error

	logger := &badgerLogger{logger: log.With().Str("component", "store").Logger()}
	if s.filepath == "" {
		s.Store, err = badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(logger))
		return err
	}

	if err = os.MkdirAll(s.filepath, 0755); err != nil {
		return err
	}

	opts := badger.DefaultOptions(s.filepath).WithLogger(logger)
	s.Store, err = badger.Open(opts)

	if errors.Is(err, badger.ErrTruncateNeeded) {
		log.Warn().Msg("there was a failure re-opening database, trying to recover")
		opts.Truncate = true
		s.Store, err = badger.Open(opts)
	}

	if err != nil {
		return errors.Wrap(err, "open report store")
	}
	return nil
}

// Save the result and update the website's last scanned time in a single transaction,
// either both are stored or neither is
func (s *ReportStore) Save(website string, result *trackerk.ScanResult) error {
	if website == "" {
		return errors.New("empty website")
	}

	resultBytes, err := EncodeResult(result)
	if err != nil {
		return errors.Wrap(err, "encode result")
	}

	timeBytes, err := EncodeTime(time.Now())
	if err != nil {
		return errors.Wrap(err, "encode time")
	}

	return s.Store.Update(func(txn *badger.Txn) error {
		if err := txn.Set(ReportKey(website, result), resultBytes); err != nil {
			return err
		}
		return txn.Set(LastScannedKey(website), timeBytes)
	})
}

// Reports of website, oldest first
func (s *ReportStore) Reports(website string) ([]*trackerk.ScanResult, error) {
	var results []*trackerk.ScanResult
	err := s.Store.View(func(txn *badger.Txn) error {
		var err error
		results, err = ReportIterator(txn, ReportPrefix(website), 0)
		return err
	})
	return results, err
}

// Websites that have been scanned at least once, sorted
func (s *ReportStore) Websites() ([]string, error) {
	var websites []string
	err := s.Store.View(func(txn *badger.Txn) error {
		websites = KeyIDIterator(txn, lastScannedPredicate)
		return nil
	})
	return websites, err
}

// LastScanned time of website, ErrNotScanned if it never was
func (s *ReportStore) LastScanned(website string) (time.Time, error) {
	var scanned time.Time
	err := s.Store.View(func(txn *badger.Txn) error {
		item, err := txn.Get(LastScannedKey(website))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		scanned, err = DecodeTime(val)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return time.Time{}, ErrNotScanned
	}
	return scanned, err
}

// Close the report store
func (s *ReportStore) Close() error {
	return s.Store.Close()
}
