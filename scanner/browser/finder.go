package browser

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

var linuxChromes = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}

// FindChrome on the FS, returns the binary and a temporary directory for profiles
func FindChrome() (string, string) {
	switch runtime.GOOS {
	case "windows":
		return "C:\\Program Files (x86)\\Google\\Chrome\\Application\\chrome.exe", "C:\\Temp\\gcd\\"
	case "darwin":
		return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome", "/tmp/gcd/"
	case "linux":
		for _, name := range linuxChromes {
			if path, err := exec.LookPath(name); err == nil {
				return path, "/tmp/gcd/"
			}
		}
		return "/usr/bin/chromium-browser", "/tmp/gcd/"
	}
	return "", filepath.Join(os.TempDir(), "gcd")
}
