// Package content collects blog items from an embedded source tree.
package content

import (
	"errors"
	"sort"
	"time"
)

// DefaultDocumentName is the file that marks a directory as an item.
const DefaultDocumentName = "content.md"

// UnknownTitle is used when a document carries no title marker.
const UnknownTitle = "unknown"

// ErrCorruptSource reports embedded bytes that cannot be decoded as text.
var ErrCorruptSource = errors.New("corrupt source")

// Item is one logical document plus its co-located assets.
// Items are built once by Collect and must not be modified afterwards.
type Item struct {
	// Path is the item slug, the name of its source directory.
	Path        string
	Title       string
	Date        time.Time
	Description string
	// Raw is the markdown source with metadata markers removed.
	Raw []byte
	// Body is the rendered HTML fragment.
	Body []byte
	// Assets maps file names relative to the item directory to their bytes.
	Assets map[string][]byte
}

// AssetNames returns the asset names in lexical order.
func (i Item) AssetNames() []string {
	names := make([]string, 0, len(i.Assets))
	for name := range i.Assets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clock returns the build time used as the last-resort item date.
type Clock interface {
	Now() time.Time
}

// Renderer converts markdown source into an HTML fragment.
type Renderer interface {
	Render(source []byte) ([]byte, error)
}
