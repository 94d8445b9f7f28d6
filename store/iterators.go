package store

import (
	badger "github.com/dgraph-io/badger/v2"
	"gitlab.com/trackerker/trackerk"
)

// ReportIterator decodes every report under prefix in key order, at most limit
// of them when limit > 0
func ReportIterator(txn *badger.Txn, prefix []byte, limit int) ([]*trackerk.ScanResult, error) {
	results := make([]*trackerk.ScanResult, 0)
	it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true, PrefetchSize: 10})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		if limit > 0 && len(results) == limit {
			break
		}

		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}

		result, err := DecodeResult(val)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// KeyIDIterator returns the id part of every predicate:id key, in key order
func KeyIDIterator(txn *badger.Txn, predicate string) []string {
	ids := make([]string, 0)
	it := txn.NewIterator(badger.IteratorOptions{Prefix: MakeKey(nil, predicate), PrefetchValues: false})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		key := it.Item().Key()
		if string(GetPredicate(key)) != predicate {
			continue
		}
		ids = append(ids, string(GetID(key)))
	}
	return ids
}
