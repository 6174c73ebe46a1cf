package page

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/JakeFAU/binary-blog/internal/content"
)

type rss struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Generator     string    `xml:"generator,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate"`
	Description string  `xml:"description,omitempty"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Feed compiles an RSS 2.0 document listing items in the given order.
// lastBuildDate is the newest item date so that the bytes only change when
// the corpus does; an empty corpus uses the build time.
func (c *Compiler) Feed(items []content.Item) ([]byte, error) {
	channel := rssChannel{
		Title:         c.site.Title,
		Link:          c.site.absolute("/"),
		Description:   "Posts by " + c.site.Author,
		LastBuildDate: feedDate(c.site.BuildTime),
		Generator:     "binary-blog " + c.site.BuildVersion,
	}
	if len(items) > 0 {
		channel.LastBuildDate = feedDate(items[0].Date)
	}
	for _, item := range items {
		link := c.site.absolute(item.Path + "/")
		channel.Items = append(channel.Items, rssItem{
			Title:       item.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			PubDate:     feedDate(item.Date),
			Description: item.Description,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(rss{Version: "2.0", Channel: channel}); err != nil {
		return nil, fmt.Errorf("encode feed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close feed encoder: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
