package store

import (
	"bytes"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v4"
	"gitlab.com/trackerker/trackerk"
)

// key predicates
const (
	reportPredicate      = "report"
	lastScannedPredicate = "last_scanned"
)

// MakeKey of a predicate and id
func MakeKey(id []byte, predicate string) []byte {
	key := []byte(predicate)
	key = append(key, byte(':'))
	key = append(key, id...)
	return key
}

// GetID of key from a pred:key
func GetID(key []byte) []byte {
	split := bytes.SplitN(key, []byte(":"), 2)
	if len(split) == 1 {
		return []byte{}
	}
	return split[1]
}

// GetPredicate from pred:key
func GetPredicate(key []byte) []byte {
	split := bytes.SplitN(key, []byte(":"), 2)
	return split[0]
}

// ReportPrefix for every report of website
func ReportPrefix(website string) []byte {
	return MakeKey([]byte(website+"|"), reportPredicate)
}

// ReportKey sorts reports of a website by their timestamp, the id breaks ties
func ReportKey(website string, result *trackerk.ScanResult) []byte {
	id := fmt.Sprintf("%020d|%s", result.Timestamp.UnixNano(), result.ID)
	return append(ReportPrefix(website), []byte(id)...)
}

// LastScannedKey of website
func LastScannedKey(website string) []byte {
	return MakeKey([]byte(website), lastScannedPredicate)
}

// EncodeResult to msgpack
func EncodeResult(result *trackerk.ScanResult) ([]byte, error) {
	return msgpack.Marshal(result)
}

// DecodeResult from msgpack
func DecodeResult(data []byte) (*trackerk.ScanResult, error) {
	result := &trackerk.ScanResult{}
	if err := msgpack.Unmarshal(data, result); err != nil {
		return nil, err
	}
	return result, nil
}

// EncodeTime usually Now
func EncodeTime(t time.Time) ([]byte, error) {
	return msgpack.Marshal(t)
}

// DecodeTime from msgpack
func DecodeTime(data []byte) (time.Time, error) {
	var t time.Time
	err := msgpack.Unmarshal(data, &t)
	return t, err
}
