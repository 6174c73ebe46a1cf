package tree

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/binary-blog/internal/content"
	"github.com/JakeFAU/binary-blog/internal/hash/blake3"
	"github.com/JakeFAU/binary-blog/internal/page"
)

// Names of the fixed top-level resources.
const (
	RobotsName = "robots.txt"
	FeedName   = "feed.xml"
)

// ErrNameCollision reports two resources competing for the same path.
var ErrNameCollision = errors.New("name collision")

// Hasher derives identity tags. Implementations mix the build version into
// every digest so that tags change on each release.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Compiler produces the document bytes the tree is built from.
type Compiler interface {
	Index(items []content.Item) ([]byte, error)
	Post(item content.Item) ([]byte, error)
	NotFound() ([]byte, error)
	Feed(items []content.Item) ([]byte, error)
	Robots() []byte
}

// File is a static top-level resource such as the site image.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Options configures Build.
type Options struct {
	Hasher Hasher
	// Files are extra top-level resources. An empty ContentType is guessed
	// from the name.
	Files []File
	// Reserved names are routed elsewhere (health, metrics) and may not be
	// used by items or files.
	Reserved []string
	Logger   *zap.Logger
}

// Tree is the built content tree plus the out-of-tree not-found page.
type Tree struct {
	root     *Node
	notFound *Node
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// NotFound returns the not-found page node. It is not reachable by lookup.
func (t *Tree) NotFound() *Node { return t.notFound }

// Build compiles items, which must already be sorted newest first, into a
// Tree. Every payload is compressed and tagged before Build returns.
func Build(items []content.Item, compiler Compiler, opts Options) (*Tree, error) {
	if compiler == nil {
		return nil, errors.New("compiler is required")
	}
	if opts.Hasher == nil {
		return nil, errors.New("hasher is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &builder{hasher: opts.Hasher}

	indexPage, err := compiler.Index(items)
	if err != nil {
		return nil, fmt.Errorf("compile index: %w", err)
	}
	root, err := b.node("", KindRoot, indexPage, page.ContentTypeHTML, "index")
	if err != nil {
		return nil, err
	}
	root.children = map[string]*Node{}

	taken := map[string]string{}
	for _, name := range opts.Reserved {
		taken[name] = "reserved route"
	}
	claim := func(name, owner string) error {
		if prev, ok := taken[name]; ok {
			return fmt.Errorf("%q used by %s and %s: %w", name, prev, owner, ErrNameCollision)
		}
		taken[name] = owner
		return nil
	}

	for _, item := range items {
		if err := claim(item.Path, "item"); err != nil {
			return nil, err
		}
		node, err := b.item(item, compiler)
		if err != nil {
			return nil, err
		}
		root.children[item.Path] = node
	}

	feed, err := compiler.Feed(items)
	if err != nil {
		return nil, fmt.Errorf("compile feed: %w", err)
	}
	files := append([]File{
		{Name: RobotsName, ContentType: page.ContentTypeText, Content: compiler.Robots()},
		{Name: FeedName, ContentType: page.ContentTypeFeed, Content: feed},
	}, opts.Files...)
	for _, f := range files {
		if err := claim(f.Name, "resource"); err != nil {
			return nil, err
		}
		ct := f.ContentType
		if ct == "" {
			ct = page.GuessContentType(f.Name)
		}
		seed := "resource\x00" + f.Name + "\x00" + blake3.Digest(f.Content)
		node, err := b.node(f.Name, KindResource, f.Content, ct, seed)
		if err != nil {
			return nil, err
		}
		root.children[f.Name] = node
	}

	notFoundPage, err := compiler.NotFound()
	if err != nil {
		return nil, fmt.Errorf("compile not-found page: %w", err)
	}
	notFound, err := b.node("", KindNotFound, notFoundPage, page.ContentTypeHTML, "")
	if err != nil {
		return nil, err
	}

	t := &Tree{root: root, notFound: notFound}
	stats := t.Stats()
	logger.Info("content tree built",
		zap.Int("items", len(items)),
		zap.Int("nodes", stats.Nodes),
		zap.Int("bytes", stats.Bytes),
		zap.Int("compressed_bytes", stats.CompressedBytes),
	)
	return t, nil
}

type builder struct {
	hasher Hasher
}

func (b *builder) item(item content.Item, compiler Compiler) (*Node, error) {
	post, err := compiler.Post(item)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", item.Path, err)
	}
	seed := "item\x00" + item.Path + "\x00" + item.Title
	node, err := b.node(item.Path, KindItem, post, page.ContentTypeHTML, seed)
	if err != nil {
		return nil, err
	}
	node.children = make(map[string]*Node, len(item.Assets))
	for _, name := range item.AssetNames() {
		assetSeed := "asset\x00" + item.Path + "\x00" + item.Title + "/" + name
		asset, err := b.node(name, KindAsset, item.Assets[name], page.GuessContentType(name), assetSeed)
		if err != nil {
			return nil, err
		}
		node.children[name] = asset
	}
	return node, nil
}

// node builds a leaf. An empty seed produces a node without an etag.
func (b *builder) node(name string, kind Kind, data []byte, contentType, seed string) (*Node, error) {
	compressed, err := Deflate(data)
	if err != nil {
		return nil, fmt.Errorf("compress %s %q: %w", kind, name, err)
	}
	var etag string
	if seed != "" {
		sum, err := b.hasher.Hash([]byte(seed))
		if err != nil {
			return nil, fmt.Errorf("tag %s %q: %w", kind, name, err)
		}
		etag = `"` + sum + `"`
	}
	return &Node{
		name:        name,
		kind:        kind,
		content:     data,
		compressed:  compressed,
		contentType: contentType,
		etag:        etag,
	}, nil
}

// Stats summarises the reachable nodes of a tree.
type Stats struct {
	Nodes           int
	Bytes           int
	CompressedBytes int
}

// Stats counts every node reachable from the root.
func (t *Tree) Stats() Stats {
	var s Stats
	_ = t.Walk(func(_ string, n *Node) error {
		s.Nodes++
		s.Bytes += len(n.content)
		s.CompressedBytes += len(n.compressed)
		return nil
	})
	return s
}

// WalkFunc is called for every reachable node with its canonical URL path.
type WalkFunc func(urlPath string, n *Node) error

// Walk visits the root, then each child in lexical order, depth first.
// Item pages are reported with their trailing slash. Walk stops at the first
// error returned by fn.
func (t *Tree) Walk(fn WalkFunc) error {
	return walk("/", t.root, fn)
}

func walk(urlPath string, n *Node, fn WalkFunc) error {
	if err := fn(urlPath, n); err != nil {
		return err
	}
	for _, name := range n.ChildNames() {
		child := n.children[name]
		childPath := strings.TrimSuffix(urlPath, "/") + "/" + name
		if child.kind == KindItem {
			childPath += "/"
		}
		if err := walk(childPath, child, fn); err != nil {
			return err
		}
	}
	return nil
}
