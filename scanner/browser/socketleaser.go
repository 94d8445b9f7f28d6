package browser

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// SOCK for unix socket comms
const SOCK = "trackerker.sock"

// SocketLeaser asks a leaser service listening on a unix socket for browsers,
// used when chrome runs in a separate container from the scanner
type SocketLeaser struct {
	leaserClient http.Client
	host         string
}

// NewSocketLeaser for browsers, sock defaults to SOCK. The returned ports are
// expected to be reachable on host.
func NewSocketLeaser(sock, host string) *SocketLeaser {
	if sock == "" {
		sock = SOCK
	}
	if host == "" {
		host = "localhost"
	}
	s := &SocketLeaser{host: host}
	s.leaserClient = http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", sock)
			},
		},
	}
	return s
}

// Host the leased browsers listen on
func (s *SocketLeaser) Host() string {
	return s.host
}

func (s *SocketLeaser) get(path string) (int, []byte, error) {
	resp, err := s.leaserClient.Get("http://unix" + path)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// Acquire a new browser
func (s *SocketLeaser) Acquire() (string, error) {
	status, port, err := s.get("/acquire")
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", errors.Errorf("leaser returned %d: %s", status, string(port))
	}
	return string(port), nil
}

// Count how many browsers
func (s *SocketLeaser) Count() (string, error) {
	_, count, err := s.get("/count")
	if err != nil {
		return "", err
	}
	return string(count), nil
}

// Return (and kill) the browser
func (s *SocketLeaser) Return(port string) error {
	status, _, err := s.get("/return?port=" + url.QueryEscape(port))
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return errors.New("browser not found")
	}
	return nil
}

// Cleanup all old browser processes
func (s *SocketLeaser) Cleanup() (string, error) {
	status, response, err := s.get("/cleanup")
	if err != nil {
		return "", err
	}

	if status == http.StatusInternalServerError {
		return "", errors.New(string(response))
	}
	return string(response), nil
}
