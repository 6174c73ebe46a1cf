// Package corpus embeds the posts and static resources the server is built from.
package corpus

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed all:posts
var posts embed.FS

//go:embed static/style.css
var style []byte

//go:embed static/site.svg
var siteImage []byte

// SiteImageName is the top-level resource name of the site image.
const SiteImageName = "site.svg"

// Posts returns the post sources rooted at the posts directory, one item
// directory per post.
func Posts() (fs.FS, error) {
	sub, err := fs.Sub(posts, "posts")
	if err != nil {
		return nil, fmt.Errorf("open embedded posts: %w", err)
	}
	return sub, nil
}

// Style returns the site style sheet.
func Style() []byte {
	return append([]byte(nil), style...)
}

// SiteImage returns the site image served at /site.svg.
func SiteImage() []byte {
	return append([]byte(nil), siteImage...)
}
