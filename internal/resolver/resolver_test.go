package resolver

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/binary-blog/internal/clock/system"
	"github.com/JakeFAU/binary-blog/internal/content"
	"github.com/JakeFAU/binary-blog/internal/hash/blake3"
	"github.com/JakeFAU/binary-blog/internal/markdown"
	"github.com/JakeFAU/binary-blog/internal/page"
	"github.com/JakeFAU/binary-blog/internal/tree"
)

const testNonce = "n0nce"

func buildTree(t *testing.T) *tree.Tree {
	t.Helper()
	return buildTreeFrom(t, fstest.MapFS{
		"20230706-binary-blog/content.md":   {Data: []byte("<meta x-title=\"A binary blog\">\n\nIt is **binary**.\n")},
		"20230812-caching/content.md":       {Data: []byte("<meta x-title=\"Caching\">\n\n![diagram](diagram.svg)\n")},
		"20230812-caching/diagram.svg":      {Data: []byte("<svg xmlns=\"http://www.w3.org/2000/svg\"/>")},
		"20230812-caching/img/plot.svg":     {Data: []byte("<svg/>")},
		"20230812-caching/img/raw/data.csv": {Data: []byte("a,b\n1,2\n")},
	})
}

func buildTreeFrom(t *testing.T, fsys fstest.MapFS) *tree.Tree {
	t.Helper()
	buildTime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	items, err := content.Collect(fsys, content.Options{
		Clock:    system.NewFixed(buildTime),
		Renderer: markdown.New(),
	})
	require.NoError(t, err)
	content.SortNewestFirst(items)

	compiler, err := page.New(page.Site{
		Title:        "Binary Blog",
		Author:       "Test Author",
		ExternalURL:  "https://blog.example.com",
		Style:        []byte("body{margin:0}"),
		StyleNonce:   testNonce,
		BuildVersion: "test",
		BuildTime:    buildTime,
	})
	require.NoError(t, err)

	tr, err := tree.Build(items, compiler, tree.Options{
		Hasher:   blake3.New("test"),
		Reserved: []string{"healthz", "readyz", "metrics"},
	})
	require.NoError(t, err)
	return tr
}

func newResolver(t *testing.T) (*Resolver, *tree.Tree) {
	t.Helper()
	tr := buildTree(t)
	r, err := New(tr, Options{StyleNonce: testNonce})
	require.NoError(t, err)
	return r, tr
}

// requestFor splits a canonical URL path into a resolver request.
func requestFor(urlPath string) Request {
	trimmed := strings.Trim(urlPath, "/")
	req := Request{TrailingSlash: strings.HasSuffix(urlPath, "/") && urlPath != "/"}
	if trimmed == "" {
		return req
	}
	req.Segment0, req.Segment1, _ = strings.Cut(trimmed, "/")
	return req
}

func inflate(t *testing.T, data []byte) []byte {
	t.Helper()
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close() //nolint:errcheck // read-only reader
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return out
}

func TestNewValidatesOptions(t *testing.T) {
	t.Parallel()

	tr := buildTree(t)
	_, err := New(nil, Options{StyleNonce: testNonce})
	require.ErrorContains(t, err, "tree")
	_, err = New(tr, Options{})
	require.ErrorContains(t, err, "nonce")
	_, err = New(tr, Options{StyleNonce: testNonce, MaxAgeSeconds: -1})
	require.ErrorContains(t, err, "max age")

	r, err := New(tr, Options{StyleNonce: testNonce, MaxAgeSeconds: 60})
	require.NoError(t, err)
	require.Equal(t, "public, max-age=60", r.CacheControl())
}

func TestResolveItemRedirectsToTrailingSlash(t *testing.T) {
	t.Parallel()

	r, _ := newResolver(t)
	resp := r.Resolve(Request{Segment0: "20230706-binary-blog"})
	require.Equal(t, http.StatusTemporaryRedirect, resp.Status)
	require.Equal(t, "/20230706-binary-blog/", resp.Header.Get("Location"))
	require.Equal(t, "public, max-age=300", resp.Header.Get("Cache-Control"))
	require.Empty(t, resp.Body)
	require.Empty(t, resp.Header.Get("ETag"))
	require.Equal(t, OutcomeRedirect, resp.Outcome)
}

func TestResolveRedirectEscapesSlug(t *testing.T) {
	t.Parallel()

	tr := buildTreeFrom(t, fstest.MapFS{
		"20230706-odd name?/content.md": {Data: []byte("<meta x-title=\"Odd\">\nbody\n")},
	})
	r, err := New(tr, Options{StyleNonce: testNonce})
	require.NoError(t, err)

	resp := r.Resolve(Request{Segment0: "20230706-odd name?"})
	require.Equal(t, http.StatusTemporaryRedirect, resp.Status)
	require.Equal(t, "/20230706-odd%20name%3F/", resp.Header.Get("Location"))
}

func TestResolveNestedAsset(t *testing.T) {
	t.Parallel()

	r, _ := newResolver(t)
	resp := r.Resolve(Request{Segment0: "20230812-caching", Segment1: "img/raw/data.csv"})
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	require.Equal(t, "a,b\n1,2\n", string(resp.Body))
}

func TestResolveItemPage(t *testing.T) {
	t.Parallel()

	r, _ := newResolver(t)
	resp := r.Resolve(Request{Segment0: "20230706-binary-blog", TrailingSlash: true})
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	require.Contains(t, string(resp.Body), "A binary blog")
	require.Regexp(t, `^"[0-9a-f]{32}"$`, resp.Header.Get("ETag"))
	require.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	require.Equal(t, "strict-origin-when-cross-origin", resp.Header.Get("Referrer-Policy"))
	require.Contains(t, resp.Header.Get("Content-Security-Policy"), "style-src 'nonce-"+testNonce+"'")
	require.Equal(t, "Accept-Encoding", resp.Header.Get("Vary"))
	require.Empty(t, resp.Header.Get("Content-Encoding"))
	require.Equal(t, OutcomeOK, resp.Outcome)
}

func TestResolveRobots(t *testing.T) {
	t.Parallel()

	r, _ := newResolver(t)
	resp := r.Resolve(Request{Segment0: "robots.txt"})
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	require.Len(t, resp.Body, len(page.RobotsPolicy()))
	require.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestResolveRootAndAssetDoNotRedirect(t *testing.T) {
	t.Parallel()

	r, _ := newResolver(t)

	root := r.Resolve(Request{})
	require.Equal(t, http.StatusOK, root.Status)
	require.Contains(t, string(root.Body), `href="/20230812-caching/"`)

	asset := r.Resolve(Request{Segment0: "20230812-caching", Segment1: "diagram.svg"})
	require.Equal(t, http.StatusOK, asset.Status)
	require.Equal(t, "image/svg+xml", asset.Header.Get("Content-Type"))
	require.Equal(t, "DENY", asset.Header.Get("X-Frame-Options"))
}

func TestResolveMisses(t *testing.T) {
	t.Parallel()

	r, _ := newResolver(t)
	tests := []struct {
		name string
		req  Request
	}{
		{name: "unknown top level", req: Request{Segment0: "nope"}},
		{name: "unknown asset", req: Request{Segment0: "20230812-caching", Segment1: "nope.png"}},
		{name: "child of a leaf", req: Request{Segment0: "robots.txt", Segment1: "x"}},
		{name: "reserved route", req: Request{Segment0: "healthz"}},
		{name: "resource with trailing slash", req: Request{Segment0: "robots.txt", TrailingSlash: true}},
		{name: "asset with trailing slash", req: Request{Segment0: "20230812-caching", Segment1: "diagram.svg", TrailingSlash: true}},
		{name: "nested asset with trailing slash", req: Request{Segment0: "20230812-caching", Segment1: "img/plot.svg", TrailingSlash: true}},
		{name: "asset directory", req: Request{Segment0: "20230812-caching", Segment1: "img", TrailingSlash: true}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			html := tt.req
			html.Accept = "text/html,application/xhtml+xml;q=0.9"
			resp := r.Resolve(html)
			require.Equal(t, http.StatusNotFound, resp.Status)
			require.NotEmpty(t, resp.Body)
			require.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
			require.Equal(t, "public, max-age=300", resp.Header.Get("Cache-Control"))
			require.Empty(t, resp.Header.Get("ETag"))
			require.Equal(t, OutcomeNotFoundHTML, resp.Outcome)

			plain := tt.req
			plain.Accept = "application/json"
			resp = r.Resolve(plain)
			require.Equal(t, http.StatusNotFound, resp.Status)
			require.Empty(t, resp.Body)
			require.Empty(t, resp.Header.Get("Content-Type"))
			require.Equal(t, OutcomeNotFoundEmpty, resp.Outcome)
		})
	}
}

func TestResolveEveryNode(t *testing.T) {
	t.Parallel()

	r, tr := newResolver(t)
	err := tr.Walk(func(urlPath string, n *tree.Node) error {
		req := requestFor(urlPath)

		plain := r.Resolve(req)
		require.Equal(t, http.StatusOK, plain.Status, urlPath)
		require.Equal(t, n.ETag(), plain.Header.Get("ETag"), urlPath)
		require.Equal(t, n.Content(), plain.Body, urlPath)

		conditional := req
		conditional.IfNoneMatch = n.ETag()
		notModified := r.Resolve(conditional)
		require.Equal(t, http.StatusNotModified, notModified.Status, urlPath)
		require.Empty(t, notModified.Body, urlPath)
		require.Equal(t, n.ETag(), notModified.Header.Get("ETag"), urlPath)
		require.Equal(t, plain.Header.Get("Cache-Control"), notModified.Header.Get("Cache-Control"), urlPath)

		stale := req
		stale.IfNoneMatch = "W/" + n.ETag()
		require.Equal(t, http.StatusOK, r.Resolve(stale).Status, urlPath)

		compressed := req
		compressed.AcceptEncoding = "gzip, deflate, br"
		deflated := r.Resolve(compressed)
		require.Equal(t, http.StatusOK, deflated.Status, urlPath)
		require.Equal(t, "deflate", deflated.Header.Get("Content-Encoding"), urlPath)
		require.Equal(t, n.CompressedContent(), deflated.Body, urlPath)
		require.Equal(t, plain.Body, inflate(t, deflated.Body), urlPath)
		require.Equal(t, OutcomeOKDeflate, deflated.Outcome, urlPath)
		return nil
	})
	require.NoError(t, err)
}

func TestResolveGarbageHeadersDegrade(t *testing.T) {
	t.Parallel()

	r, _ := newResolver(t)
	resp := r.Resolve(Request{
		Segment0:       "robots.txt",
		AcceptEncoding: ";;;q=bogus",
		IfNoneMatch:    "\x00not-an-etag",
	})
	require.Equal(t, http.StatusOK, resp.Status)
	require.Empty(t, resp.Header.Get("Content-Encoding"))
	require.Equal(t, page.RobotsPolicy(), string(resp.Body))
}

// TestResolveDeterministic checks that any request, reachable or not, is
// answered identically when repeated.
func TestResolveDeterministic(t *testing.T) {
	r, tr := newResolver(t)

	var paths []string
	require.NoError(t, tr.Walk(func(urlPath string, _ *tree.Node) error {
		paths = append(paths, urlPath)
		return nil
	}))
	paths = append(paths, "/missing", "/20230812-caching/missing.png", "/20230706-binary-blog")

	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(42)
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("resolving twice yields the same response", prop.ForAll(
		func(urlPath, accept, encoding string) bool {
			req := requestFor(urlPath)
			req.Accept = accept
			req.AcceptEncoding = encoding
			a, b := r.Resolve(req), r.Resolve(req)
			return a.Status == b.Status &&
				bytes.Equal(a.Body, b.Body) &&
				a.Header.Get("ETag") == b.Header.Get("ETag") &&
				a.Header.Get("Content-Encoding") == b.Header.Get("Content-Encoding")
		},
		gen.OneConstOf(toInterfaces(paths)...),
		gen.OneConstOf("", "text/html", "*/*", "application/json"),
		gen.OneConstOf("", "deflate", "gzip", "gzip, deflate"),
	))

	properties.TestingRun(t)
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
