package content

import (
	"html"
	"regexp"
	"time"
)

var (
	titlePattern       = regexp.MustCompile(`<meta\s+x-title="([^"]*)"\s*/?>`)
	datePattern        = regexp.MustCompile(`<meta\s+x-date="([^"]*)"\s*/?>`)
	descriptionPattern = regexp.MustCompile(`<meta\s+x-description="([^"]*)"\s*/?>`)
	anyMarkerPattern   = regexp.MustCompile(`(?m)^[ \t]*<meta\s+x-[a-z]+="[^"]*"\s*/?>[ \t]*\r?\n?`)
	pathDatePattern    = regexp.MustCompile(`^(\d{8})-`)
)

// Meta holds the optional fields found in a document's metadata markers.
// A nil field means the marker was absent.
type Meta struct {
	Title       *string
	Date        *string
	Description *string
}

// ExtractMeta scans raw document text for x-title, x-date and x-description
// markers. The first occurrence of each marker wins.
func ExtractMeta(raw []byte) Meta {
	return Meta{
		Title:       findMarker(titlePattern, raw),
		Date:        findMarker(datePattern, raw),
		Description: findMarker(descriptionPattern, raw),
	}
}

// StripMeta removes whole-line metadata markers so they do not leak into the
// rendered body.
func StripMeta(raw []byte) []byte {
	return anyMarkerPattern.ReplaceAll(raw, nil)
}

func findMarker(pattern *regexp.Regexp, raw []byte) *string {
	m := pattern.FindSubmatch(raw)
	if m == nil {
		return nil
	}
	v := html.UnescapeString(string(m[1]))
	return &v
}

// PathDate parses a YYYYMMDD- prefix on an item path.
func PathDate(path string) (time.Time, bool) {
	m := pathDatePattern.FindStringSubmatch(path)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("20060102", m[1], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MarkerDate parses an x-date value as a calendar date or an RFC 3339 timestamp.
func MarkerDate(value string) (time.Time, bool) {
	if t, err := time.ParseInLocation("2006-01-02", value, time.UTC); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// resolveDate applies the date precedence: path prefix, then the x-date
// marker, then the build time.
func resolveDate(path string, meta Meta, buildTime time.Time) (time.Time, dateSource) {
	if t, ok := PathDate(path); ok {
		return t, dateFromPath
	}
	if meta.Date != nil {
		if t, ok := MarkerDate(*meta.Date); ok {
			return t, dateFromMarker
		}
	}
	return buildTime, dateFromBuild
}

type dateSource string

const (
	dateFromPath   dateSource = "path"
	dateFromMarker dateSource = "marker"
	dateFromBuild  dateSource = "build"
)
