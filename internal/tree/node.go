// Package tree builds the immutable content tree served by the blog.
//
// The tree is constructed once by Build and then only read. Nodes expose
// their payloads through accessors; the returned slices are shared by every
// request and must not be modified.
package tree

import "sort"

// Kind classifies a node.
type Kind int

// Node kinds.
const (
	KindRoot Kind = iota
	KindItem
	KindAsset
	KindResource
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindItem:
		return "item"
	case KindAsset:
		return "asset"
	case KindResource:
		return "resource"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Node is one servable resource with precomputed payloads.
type Node struct {
	name        string
	kind        Kind
	content     []byte
	compressed  []byte
	contentType string
	etag        string
	children    map[string]*Node
}

// Name returns the node's path segment; empty for the root.
func (n *Node) Name() string { return n.name }

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Content returns the uncompressed payload.
func (n *Node) Content() []byte { return n.content }

// CompressedContent returns the raw DEFLATE form of Content.
func (n *Node) CompressedContent() []byte { return n.compressed }

// ContentType returns the MIME type of Content.
func (n *Node) ContentType() string { return n.contentType }

// ETag returns the quoted identity tag, or "" for the not-found node.
func (n *Node) ETag() string { return n.etag }

// Child looks up a direct child by name.
func (n *Node) Child(name string) (*Node, bool) {
	c, ok := n.children[name]
	return c, ok
}

// ChildNames returns the names of the direct children in lexical order.
func (n *Node) ChildNames() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
