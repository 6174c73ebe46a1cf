package app

import (
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/JakeFAU/binary-blog/internal/api"
	"github.com/JakeFAU/binary-blog/internal/config"
	"github.com/JakeFAU/binary-blog/internal/content"
	"github.com/JakeFAU/binary-blog/internal/corpus"
	"github.com/JakeFAU/binary-blog/internal/hash/blake3"
	"github.com/JakeFAU/binary-blog/internal/markdown"
	"github.com/JakeFAU/binary-blog/internal/page"
	"github.com/JakeFAU/binary-blog/internal/tree"
)

// nonceLength is the number of hex digits of the style digest used as the
// CSP nonce.
const nonceLength = 24

// Sources are the build inputs of a site.
type Sources struct {
	Posts fs.FS
	Style []byte
	Image []byte
}

// EmbeddedSources returns the sources compiled into the binary.
func EmbeddedSources() (Sources, error) {
	posts, err := corpus.Posts()
	if err != nil {
		return Sources{}, err
	}
	return Sources{Posts: posts, Style: corpus.Style(), Image: corpus.SiteImage()}, nil
}

// Site is a fully built, immutable site.
type Site struct {
	Items []content.Item
	Tree  *tree.Tree
	Page  page.Site
}

// BuildSite collects, compiles and indexes src. It runs once, before the
// server accepts traffic; any error means nothing may be served.
func BuildSite(cfg config.Config, src Sources, clock content.Clock, logger *zap.Logger) (*Site, error) {
	if src.Posts == nil {
		return nil, errors.New("post sources are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	items, err := content.Collect(src.Posts, content.Options{
		DocumentName: cfg.Site.DocumentName,
		Clock:        clock,
		Renderer:     markdown.New(),
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("collect items: %w", err)
	}
	content.SortNewestFirst(items)

	site := page.Site{
		Title:        cfg.Site.Title,
		Author:       cfg.Site.Author,
		ExternalURL:  cfg.Site.ExternalURL,
		Style:        src.Style,
		StyleNonce:   blake3.Digest(src.Style)[:nonceLength],
		BuildVersion: cfg.Site.BuildVersion,
		BuildTime:    clock.Now(),
	}
	for _, name := range cfg.Site.AuthorLinkNames() {
		site.AuthorLinks = append(site.AuthorLinks, page.Link{Name: name, URL: cfg.Site.AuthorLinks[name]})
	}
	var files []tree.File
	if len(src.Image) > 0 {
		site.Image = corpus.SiteImageName
		files = append(files, tree.File{Name: corpus.SiteImageName, Content: src.Image})
	}

	compiler, err := page.New(site)
	if err != nil {
		return nil, fmt.Errorf("create compiler: %w", err)
	}
	t, err := tree.Build(items, compiler, tree.Options{
		Hasher:   blake3.New(cfg.Site.BuildVersion),
		Files:    files,
		Reserved: api.ReservedRoutes,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build content tree: %w", err)
	}
	return &Site{Items: items, Tree: t, Page: site}, nil
}
