package page

import "testing"

func TestGuessContentType(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"diagram.png":    "image/png",
		"PHOTO.JPG":      "image/jpeg",
		"img/nested.svg": "image/svg+xml",
		"notes.txt":      ContentTypeText,
		"page.html":      ContentTypeHTML,
		"data.bin":       ContentTypeFallback,
		"Makefile":       ContentTypeFallback,
	}
	for name, want := range tests {
		if got := GuessContentType(name); got != want {
			t.Errorf("GuessContentType(%q) = %q; want %q", name, got, want)
		}
	}
}
