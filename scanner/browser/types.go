package browser

import "gitlab.com/trackerker/trackerk"

// https://chromium.googlesource.com/chromium/src/+/master/third_party/WebKit/Source/core/inspector/InspectorNetworkAgent.cpp#96
const maximumTotalBufferSize = -1

const maximumResourceBufferSize = -1

const maximumPostDataSize = -1

// TabDisconnectedHandler is called when the tab crashes or the inspector was disconnected
type TabDisconnectedHandler func(tab *Tab, reason string)

// revive:exported
var (
	ErrNavigationTimedOut = trackerk.ErrNavigationTimedOut
	ErrTabCrashed         = trackerk.ErrTabCrashed
	ErrTabClosing         = trackerk.ErrTabClosing
	ErrTimedOut           = trackerk.ErrTimedOut
	ErrNavigating         = trackerk.ErrNavigating
)

var startupFlags = []string{
	"--enable-automation",
	"--enable-features=NetworkService",
	"--test-type",
	"--disable-client-side-phishing-detection",
	"--disable-component-update",
	"--disable-infobars",
	"--disable-ntp-popular-sites",
	"--disable-ntp-most-likely-favicons-from-server",
	"--disable-sync-app-list",
	"--disable-domain-reliability",
	"--disable-background-networking",
	"--disable-sync",
	"--disable-new-browser-first-run",
	"--disable-default-apps",
	"--disable-popup-blocking",
	"--disable-extensions",
	"--disable-features=TranslateUI",
	"--disable-gpu",
	"--disable-dev-shm-usage",
	"--no-sandbox",
	"--no-first-run",
	"--window-size=1024,768",
	"--safebrowsing-disable-auto-update",
	"--safebrowsing-disable-download-protection",
	"--password-store=basic",
	"--headless",
	"about:blank",
}
