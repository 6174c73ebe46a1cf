package content

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Options configures Collect.
type Options struct {
	// DocumentName is the file name that marks an item directory.
	DocumentName string
	Clock        Clock
	Renderer     Renderer
	Logger       *zap.Logger
}

// Collect enumerates the items in fsys. Every top-level directory holding a
// DocumentName file is an item; its other files are the item's assets.
// Items are returned in discovery (lexical) order.
func Collect(fsys fs.FS, opts Options) ([]Item, error) {
	if opts.Clock == nil {
		return nil, errors.New("clock is required")
	}
	if opts.Renderer == nil {
		return nil, errors.New("renderer is required")
	}
	docName := opts.DocumentName
	if docName == "" {
		docName = DefaultDocumentName
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	files, err := listFiles(fsys)
	if err != nil {
		return nil, err
	}

	var docs []string
	assets := map[string]map[string][]byte{}
	for _, name := range files {
		dir, rel, ok := strings.Cut(name, "/")
		if !ok {
			continue
		}
		if rel == docName {
			docs = append(docs, dir)
			continue
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read asset %s: %w", name, err)
		}
		if assets[dir] == nil {
			assets[dir] = map[string][]byte{}
		}
		assets[dir][rel] = data
	}

	buildTime := opts.Clock.Now()
	items := make([]Item, 0, len(docs))
	for _, dir := range docs {
		item, err := buildItem(fsys, dir, docName, buildTime, opts.Renderer, logger)
		if err != nil {
			return nil, err
		}
		item.Assets = assets[dir]
		if item.Assets == nil {
			item.Assets = map[string][]byte{}
		}
		items = append(items, item)
	}
	logger.Debug("collected items", zap.Int("count", len(items)))
	return items, nil
}

func listFiles(fsys fs.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk sources: %w", err)
	}
	return files, nil
}

func buildItem(
	fsys fs.FS,
	dir string,
	docName string,
	buildTime time.Time,
	renderer Renderer,
	logger *zap.Logger,
) (Item, error) {
	docPath := path.Join(dir, docName)
	raw, err := fs.ReadFile(fsys, docPath)
	if err != nil {
		return Item{}, fmt.Errorf("read document %s: %w", docPath, err)
	}
	if !utf8.Valid(raw) {
		return Item{}, fmt.Errorf("%s is not valid UTF-8: %w", docPath, ErrCorruptSource)
	}

	meta := ExtractMeta(raw)
	title := UnknownTitle
	if meta.Title != nil {
		title = *meta.Title
	} else {
		logger.Debug("title marker missing", zap.String("item", dir))
	}
	date, source := resolveDate(dir, meta, buildTime)
	if source == dateFromBuild {
		logger.Debug("no usable date, using build time", zap.String("item", dir))
	}
	var description string
	if meta.Description != nil {
		description = *meta.Description
	}

	stripped := StripMeta(raw)
	body, err := renderer.Render(stripped)
	if err != nil {
		return Item{}, fmt.Errorf("render %s: %w", docPath, err)
	}
	return Item{
		Path:        dir,
		Title:       title,
		Date:        date,
		Description: description,
		Raw:         stripped,
		Body:        body,
	}, nil
}

// SortNewestFirst orders items by date, most recent first. Items sharing a
// date are ordered by path, descending, so the order is total.
func SortNewestFirst(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		if !items[a].Date.Equal(items[b].Date) {
			return items[a].Date.After(items[b].Date)
		}
		return items[a].Path > items[b].Path
	})
}
