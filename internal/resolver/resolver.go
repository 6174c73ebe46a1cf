// Package resolver answers read requests from a built content tree. Every
// operation is an in-memory lookup, so Resolve never fails and never blocks.
package resolver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/JakeFAU/binary-blog/internal/tree"
)

// DefaultMaxAge is the cache lifetime, in seconds, used when none is configured.
const DefaultMaxAge = 300

// Outcome labels how a request was answered. It is used as a metrics label.
type Outcome string

// Possible outcomes.
const (
	OutcomeOK            Outcome = "ok"
	OutcomeOKDeflate     Outcome = "ok_deflate"
	OutcomeNotModified   Outcome = "not_modified"
	OutcomeRedirect      Outcome = "redirect"
	OutcomeNotFoundHTML  Outcome = "not_found_html"
	OutcomeNotFoundEmpty Outcome = "not_found_empty"
)

const (
	encodingDeflate = "deflate"
	acceptHTML      = "text/html"
)

// Request holds the parts of an HTTP request the resolver consults. Empty
// segments are absent.
type Request struct {
	Segment0 string
	// Segment1 is everything below Segment0, without a trailing slash. It
	// contains slashes for assets kept in item subdirectories.
	Segment1 string
	// TrailingSlash is only valid on the root and item pages. Any other node
	// reached with one is a miss.
	TrailingSlash  bool
	Accept         string
	AcceptEncoding string
	IfNoneMatch    string
}

// Response is the resolved answer. Body aliases tree memory and must not be
// modified.
type Response struct {
	Status  int
	Header  http.Header
	Body    []byte
	Outcome Outcome
}

// Options configures a Resolver.
type Options struct {
	// MaxAgeSeconds is the max-age of the Cache-Control header.
	MaxAgeSeconds int
	// StyleNonce is the nonce of the inline style block, allowed by the CSP.
	StyleNonce string
}

// Resolver maps requests onto nodes of a tree. It is safe for concurrent use.
type Resolver struct {
	tree         *tree.Tree
	cacheControl string
	security     map[string]string
}

// New returns a Resolver over t.
func New(t *tree.Tree, opts Options) (*Resolver, error) {
	if t == nil {
		return nil, errors.New("tree is required")
	}
	if opts.StyleNonce == "" {
		return nil, errors.New("style nonce is required")
	}
	maxAge := opts.MaxAgeSeconds
	if maxAge == 0 {
		maxAge = DefaultMaxAge
	}
	if maxAge < 0 {
		return nil, fmt.Errorf("max age must be positive, got %d", maxAge)
	}
	return &Resolver{
		tree:         t,
		cacheControl: fmt.Sprintf("public, max-age=%d", maxAge),
		security: map[string]string{
			"X-Frame-Options": "DENY",
			"Content-Security-Policy": "default-src 'none'; img-src 'self'; style-src 'nonce-" + opts.StyleNonce +
				"'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'",
			"X-Content-Type-Options": "nosniff",
			"Referrer-Policy":        "strict-origin-when-cross-origin",
		},
	}, nil
}

// CacheControl returns the Cache-Control value attached to responses.
func (r *Resolver) CacheControl() string {
	return r.cacheControl
}

// Resolve walks the tree for req and negotiates the response.
func (r *Resolver) Resolve(req Request) Response {
	node, ok := r.lookup(req)
	if !ok {
		return r.NotFound(req)
	}
	if req.TrailingSlash && node.Kind() != tree.KindItem && node.Kind() != tree.KindRoot {
		return r.NotFound(req)
	}

	if node.Kind() == tree.KindItem && req.Segment1 == "" && !req.TrailingSlash {
		h := http.Header{}
		h.Set("Location", (&url.URL{Path: "/" + req.Segment0 + "/"}).EscapedPath())
		h.Set("Cache-Control", r.cacheControl)
		return Response{Status: http.StatusTemporaryRedirect, Header: h, Outcome: OutcomeRedirect}
	}

	if req.IfNoneMatch != "" && req.IfNoneMatch == node.ETag() {
		h := http.Header{}
		h.Set("ETag", node.ETag())
		h.Set("Cache-Control", r.cacheControl)
		h.Set("Vary", "Accept-Encoding")
		return Response{Status: http.StatusNotModified, Header: h, Outcome: OutcomeNotModified}
	}

	h := http.Header{}
	for k, v := range r.security {
		h.Set(k, v)
	}
	h.Set("Content-Type", node.ContentType())
	h.Set("ETag", node.ETag())
	h.Set("Cache-Control", r.cacheControl)
	h.Set("Vary", "Accept-Encoding")
	if strings.Contains(req.AcceptEncoding, encodingDeflate) {
		h.Set("Content-Encoding", encodingDeflate)
		return Response{Status: http.StatusOK, Header: h, Body: node.CompressedContent(), Outcome: OutcomeOKDeflate}
	}
	return Response{Status: http.StatusOK, Header: h, Body: node.Content(), Outcome: OutcomeOK}
}

func (r *Resolver) lookup(req Request) (*tree.Node, bool) {
	node := r.tree.Root()
	if req.Segment0 == "" {
		return node, req.Segment1 == ""
	}
	node, ok := node.Child(req.Segment0)
	if !ok {
		return nil, false
	}
	if req.Segment1 == "" {
		return node, true
	}
	return node.Child(req.Segment1)
}

// NotFound answers a miss. Browsers asking for HTML get the error page; every
// other client gets an empty body. Neither carries an etag.
func (r *Resolver) NotFound(req Request) Response {
	h := http.Header{}
	if !strings.Contains(req.Accept, acceptHTML) {
		return Response{Status: http.StatusNotFound, Header: h, Outcome: OutcomeNotFoundEmpty}
	}
	nf := r.tree.NotFound()
	h.Set("Content-Type", nf.ContentType())
	h.Set("Cache-Control", r.cacheControl)
	return Response{Status: http.StatusNotFound, Header: h, Body: nf.Content(), Outcome: OutcomeNotFoundHTML}
}
