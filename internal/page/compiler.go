package page

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/JakeFAU/binary-blog/internal/content"
)

const layout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.PageTitle}}</title>
{{- with .Description}}
<meta name="description" content="{{.}}">
<meta property="og:description" content="{{.}}">
{{- end}}
<meta property="og:title" content="{{.PageTitle}}">
<meta property="og:type" content="{{.OGType}}">
<meta property="og:url" content="{{.URL}}">
{{- with .Image}}
<meta property="og:image" content="{{.}}">
<link rel="icon" href="{{.}}">
{{- end}}
<link rel="alternate" type="application/rss+xml" title="{{.Site.Title}}" href="/feed.xml">
<style nonce="{{.Site.StyleNonce}}">{{.Style}}</style>
</head>
<body>
<header>
<a class="site-title" href="/">{{.Site.Title}}</a>
<nav>{{range .Site.AuthorLinks}}<a href="{{.URL}}" rel="me">{{.Name}}</a>{{end}}</nav>
</header>
<main>
{{- template "main" .}}
</main>
<footer>
<p>&copy; {{.Site.Author}}. Built {{.Site.BuildTime.Format "2006-01-02"}} ({{.Site.BuildVersion}}).</p>
</footer>
</body>
</html>
`

const indexMain = `{{define "main"}}
{{- range .Years}}
<section>
<h2>{{.Year}}</h2>
<ul class="posts">
{{- range .Items}}
<li><time datetime="{{.Date.Format "2006-01-02"}}">{{.Date.Format "02 Jan"}}</time> <a href="/{{.Path}}/">{{.Title}}</a></li>
{{- end}}
</ul>
</section>
{{- else}}
<p>Nothing has been published yet.</p>
{{- end}}
{{end}}`

const postMain = `{{define "main"}}
<article>
<h1>{{.Item.Title}}</h1>
<time datetime="{{.Item.Date.Format "2006-01-02"}}">{{.Item.Date.Format "2 January 2006"}}</time>
{{.Body}}
</article>
{{end}}`

const notFoundMain = `{{define "main"}}
<h1>Not found</h1>
<p>There is nothing at this address. Try the <a href="/">index</a>.</p>
{{end}}`

var (
	indexTemplate    = template.Must(template.Must(template.New("layout").Parse(layout)).Parse(indexMain))
	postTemplate     = template.Must(template.Must(template.New("layout").Parse(layout)).Parse(postMain))
	notFoundTemplate = template.Must(template.Must(template.New("layout").Parse(layout)).Parse(notFoundMain))
)

// Compiler produces final document bytes. It holds no mutable state; every
// method is a pure function of the site and its arguments.
type Compiler struct {
	site Site
}

// New validates site and returns a Compiler for it.
func New(site Site) (*Compiler, error) {
	if err := site.Validate(); err != nil {
		return nil, fmt.Errorf("invalid site: %w", err)
	}
	return &Compiler{site: site}, nil
}

// Site returns the site the compiler was built with.
func (c *Compiler) Site() Site {
	return c.site
}

// Chrome holds the values shared by every page layout.
type Chrome struct {
	Site        Site
	Style       template.CSS
	PageTitle   string
	Description string
	OGType      string
	URL         string
	Image       string
}

func (c *Compiler) chrome(title, description, ogType, rel string) Chrome {
	var image string
	if c.site.Image != "" {
		image = c.site.absolute(c.site.Image)
	}
	return Chrome{
		Site: c.site,
		// #nosec G203 -- the style sheet is embedded at build time, not user input.
		Style:       template.CSS(c.site.Style),
		PageTitle:   title,
		Description: description,
		OGType:      ogType,
		URL:         c.site.absolute(rel),
		Image:       image,
	}
}

// YearGroup is one calendar year of the index navigation.
type YearGroup struct {
	Year  int
	Items []content.Item
}

// GroupByYear groups items, which must already be sorted newest first, by
// calendar year. The order of the input is preserved.
func GroupByYear(items []content.Item) []YearGroup {
	var groups []YearGroup
	for _, item := range items {
		year := item.Date.Year()
		if n := len(groups); n == 0 || groups[n-1].Year != year {
			groups = append(groups, YearGroup{Year: year})
		}
		groups[len(groups)-1].Items = append(groups[len(groups)-1].Items, item)
	}
	return groups
}

// Index compiles the root page listing every item grouped by year.
func (c *Compiler) Index(items []content.Item) ([]byte, error) {
	data := struct {
		Chrome
		Years []YearGroup
	}{
		Chrome: c.chrome(c.site.Title, "", "website", "/"),
		Years:  GroupByYear(items),
	}
	return execute(indexTemplate, data)
}

// Post compiles the page for one item.
func (c *Compiler) Post(item content.Item) ([]byte, error) {
	data := struct {
		Chrome
		Item content.Item
		Body template.HTML
	}{
		Chrome: c.chrome(item.Title+" - "+c.site.Title, item.Description, "article", item.Path+"/"),
		Item:   item,
		// #nosec G203 -- fragments come from the embedded corpus via the markdown renderer.
		Body: template.HTML(item.Body),
	}
	return execute(postTemplate, data)
}

// NotFound compiles the HTML error page.
func (c *Compiler) NotFound() ([]byte, error) {
	return execute(notFoundTemplate, struct{ Chrome }{c.chrome("Not found - "+c.site.Title, "", "website", "/")})
}

func execute(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute %s template: %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

// feedDate formats t for RSS pubDate fields.
func feedDate(t time.Time) string {
	return t.UTC().Format(time.RFC1123Z)
}
