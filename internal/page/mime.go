package page

import (
	"path"
	"strings"
)

// Content types produced by the compiler.
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeFeed = "application/rss+xml; charset=utf-8"
	ContentTypeText = "text/plain; charset=utf-8"
	// ContentTypeFallback is used for assets with an unknown extension.
	ContentTypeFallback = "text/plain"
)

var contentTypes = map[string]string{
	".css":   "text/css; charset=utf-8",
	".csv":   "text/csv; charset=utf-8",
	".gif":   "image/gif",
	".htm":   ContentTypeHTML,
	".html":  ContentTypeHTML,
	".ico":   "image/x-icon",
	".jpeg":  "image/jpeg",
	".jpg":   "image/jpeg",
	".js":    "text/javascript; charset=utf-8",
	".json":  "application/json",
	".md":    "text/markdown; charset=utf-8",
	".mp3":   "audio/mpeg",
	".mp4":   "video/mp4",
	".pdf":   "application/pdf",
	".png":   "image/png",
	".svg":   "image/svg+xml",
	".txt":   ContentTypeText,
	".wasm":  "application/wasm",
	".webm":  "video/webm",
	".webp":  "image/webp",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".xml":   "application/xml",
	".zip":   "application/zip",
}

// GuessContentType maps a file name to a MIME type by extension.
// Unknown extensions map to ContentTypeFallback.
func GuessContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return ContentTypeFallback
}
