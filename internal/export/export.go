// Package export writes a built content tree to a blob store so the site can
// be served by a static host.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/binary-blog/internal/tree"
)

const (
	indexObject    = "index.html"
	notFoundObject = "404.html"
	// DeflateSuffix marks the precompressed sibling of every object.
	DeflateSuffix = ".deflate"
)

// BlobStore persists exported objects.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// Result summarises an export.
type Result struct {
	Objects int
	Bytes   int
}

// ObjectPath maps a canonical URL path reported by tree.Walk to the object it
// is stored as. Directory-style paths map to their index.html.
func ObjectPath(urlPath string) string {
	trimmed := strings.TrimPrefix(urlPath, "/")
	if trimmed == "" || strings.HasSuffix(trimmed, "/") {
		return trimmed + indexObject
	}
	return trimmed
}

// Exporter writes trees to a store.
type Exporter struct {
	store  BlobStore
	logger *zap.Logger
}

// New returns an Exporter writing to store.
func New(store BlobStore, logger *zap.Logger) (*Exporter, error) {
	if store == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{store: store, logger: logger}, nil
}

// Export writes every reachable node of t, plus the not-found page as
// 404.html. Each object gets a deflate-compressed sibling.
func (e *Exporter) Export(ctx context.Context, t *tree.Tree) (Result, error) {
	var res Result
	err := t.Walk(func(urlPath string, n *tree.Node) error {
		return e.put(ctx, ObjectPath(urlPath), n, &res)
	})
	if err != nil {
		return res, err
	}
	if err := e.put(ctx, notFoundObject, t.NotFound(), &res); err != nil {
		return res, err
	}
	e.logger.Info("export complete", zap.Int("objects", res.Objects), zap.Int("bytes", res.Bytes))
	return res, nil
}

func (e *Exporter) put(ctx context.Context, path string, n *tree.Node, res *Result) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("export canceled: %w", err)
	}
	for _, obj := range []struct {
		path string
		data []byte
	}{
		{path, n.Content()},
		{path + DeflateSuffix, n.CompressedContent()},
	} {
		uri, err := e.store.PutObject(ctx, obj.path, n.ContentType(), bytes.NewReader(obj.data))
		if err != nil {
			return fmt.Errorf("put %s: %w", obj.path, err)
		}
		e.logger.Debug("object written", zap.String("uri", uri), zap.Int("bytes", len(obj.data)))
		res.Objects++
		res.Bytes += len(obj.data)
	}
	return nil
}
