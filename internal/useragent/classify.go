// Package useragent maps raw User-Agent strings to a coarse (browser, device)
// classification. It is deliberately crude: a handful of case-insensitive
// substring tests, good enough to bucket traffic for statistics, with no
// ambition to be a full UA parser.
package useragent

import "strings"

// Browser labels returned by Classify.
const (
	BrowserIE      = "Internet Explorer"
	BrowserFirefox = "Firefox"
	BrowserChrome  = "Chrome"
	BrowserSafari  = "Safari"
	BrowserOpera   = "Opera"
	BrowserOther   = "Other"
)

// Device labels returned by Classify.
const (
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceDesktop = "Desktop"
)

// Classify returns the (browser, device) labels for a raw User-Agent string.
//
// It is a pure, total function: any input, including the empty string, yields
// a result (BrowserOther, DeviceDesktop are the defaults). Matching is
// case-insensitive and ordered, because real UA strings overlap: Chrome UAs
// also contain "Safari", so Chrome must be tested first; "MSIE" only counts
// when "Opera" is absent (old Opera spoofed IE).
func Classify(ua string) (browser, device string) {
	lower := strings.ToLower(ua)

	device = DeviceDesktop
	switch {
	case strings.Contains(lower, "mobile"):
		device = DeviceMobile
	case strings.Contains(lower, "tablet"):
		device = DeviceTablet
	}

	browser = BrowserOther
	switch {
	case strings.Contains(lower, "msie") && !strings.Contains(lower, "opera"):
		browser = BrowserIE
	case strings.Contains(lower, "firefox"):
		browser = BrowserFirefox
	case strings.Contains(lower, "chrome"):
		browser = BrowserChrome
	case strings.Contains(lower, "safari"):
		browser = BrowserSafari
	case strings.Contains(lower, "opera"):
		browser = BrowserOpera
	}

	return browser, device
}
