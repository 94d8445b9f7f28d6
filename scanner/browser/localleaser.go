package browser

import (
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
)

// LocalLeaser starts chrome processes on this host
type LocalLeaser struct {
	browserLock sync.RWMutex
	browsers    map[string]*gcd.Gcd
	chrome      string
	tmp         string
}

// NewLocalLeaser using the chrome binary at chromePath with profiles created
// under tmp. Empty values fall back to the platform defaults.
func NewLocalLeaser(chromePath, tmp string) *LocalLeaser {
	defaultChrome, defaultTmp := FindChrome()
	if chromePath == "" {
		chromePath = defaultChrome
	}
	if tmp == "" {
		tmp = defaultTmp
	}
	return &LocalLeaser{
		browserLock: sync.RWMutex{},
		browsers:    make(map[string]*gcd.Gcd),
		chrome:      chromePath,
		tmp:         tmp,
	}
}

// Acquire starts a new chrome process with a fresh profile, returns its debugger port
func (s *LocalLeaser) Acquire() (string, error) {
	b := gcd.NewChromeDebugger()
	b.DeleteProfileOnExit()

	profileDir, err := randProfile(s.tmp)
	if err != nil {
		return "", err
	}
	port := randPort()

	b.AddFlags(startupFlags)
	if err := b.StartProcess(s.chrome, profileDir, port); err != nil {
		return "", errors.Wrap(err, "failed to start "+s.chrome)
	}
	s.browserLock.Lock()
	s.browsers[port] = b
	s.browserLock.Unlock()

	log.Debug().Str("port", port).Str("profile", profileDir).Msg("started browser process")
	return port, nil
}

// Count of running browser processes
func (s *LocalLeaser) Count() (string, error) {
	s.browserLock.RLock()
	count := len(s.browsers)
	s.browserLock.RUnlock()
	return strconv.Itoa(count), nil
}

// Return kills the browser process listening on port
func (s *LocalLeaser) Return(port string) error {
	s.browserLock.Lock()
	defer s.browserLock.Unlock()

	if b, ok := s.browsers[port]; ok {
		delete(s.browsers, port)
		if err := b.ExitProcess(); err != nil {
			return err
		}
		return nil
	}

	return errors.New("not found")
}

// Cleanup removes left over profile directories
func (s *LocalLeaser) Cleanup() (string, error) {
	if err := RemoveTmpContents(s.tmp); err != nil {
		return "", err
	}
	return "ok", nil
}
