package browser

import (
	"net"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// LeaserService starts and kills browser processes, every Acquire is a fresh
// process with its own profile directory
type LeaserService interface {
	Acquire() (string, error) // returns port number
	Return(port string) error
	Cleanup() (string, error)
	Count() (string, error)
}

func randPort() string {
	l, err := net.Listen("tcp", "localhost:0")

	if err != nil {
		log.Warn().Err(err).Msg("unable to get port using default 9022")
		return "9022"
	}
	_, randPort, _ := net.SplitHostPort(l.Addr().String())
	l.Close()
	return randPort
}

func randProfile(tmp string) (string, error) {
	if err := os.MkdirAll(tmp, 0700); err != nil {
		return "", errors.Wrap(err, "failed to create temporary directory")
	}

	profile, err := os.MkdirTemp(tmp, "gcd")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temporary profile directory")
	}

	if profile == "" {
		// removing an empty profile path on exit could delete system files
		return "", errors.New("profile returned empty")
	}
	return profile, nil
}

// RemoveTmpContents that the browser created
func RemoveTmpContents(tmp string) error {
	if tmp == "" {
		return nil
	}
	files, err := filepath.Glob(filepath.Join(tmp, "gcd*"))
	if err != nil {
		return err
	}
	for _, file := range files {
		err = os.RemoveAll(file)
		if err != nil {
			return err
		}
	}
	return nil
}
