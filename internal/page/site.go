// Package page compiles items into complete, byte-exact documents.
package page

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Link is a named outbound link shown in the site chrome.
type Link struct {
	Name string
	URL  string
}

// Site carries the site-wide values every page is compiled with. It is built
// once per process and passed by value.
type Site struct {
	Title       string
	Author      string
	AuthorLinks []Link
	// ExternalURL is the absolute URL prefix used for feed and social-card links.
	ExternalURL string
	// Style is inlined into every HTML page.
	Style []byte
	// StyleNonce authorises the inline style block under the CSP.
	StyleNonce string
	// Image is the top-level resource name of the site image.
	Image        string
	BuildVersion string
	BuildTime    time.Time
}

// Validate checks the fields the templates depend on.
func (s Site) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return errors.New("site title is required")
	}
	if s.StyleNonce == "" {
		return errors.New("style nonce is required")
	}
	u, err := url.Parse(s.ExternalURL)
	if err != nil {
		return fmt.Errorf("parse external url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("external url %q must be an absolute http(s) url", s.ExternalURL)
	}
	return nil
}

// absolute joins rel onto the external URL prefix.
func (s Site) absolute(rel string) string {
	return strings.TrimRight(s.ExternalURL, "/") + "/" + strings.TrimLeft(rel, "/")
}
