package news

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"medico-news/internal/domain/entity"
)

// RawItem is one unnormalized record as emitted by a feed source. Every
// field except Title and Link is optional; the variant image fields mirror
// the shapes real-world feeds actually use (media RSS, enclosures, podcast
// artwork).
type RawItem struct {
	Title     string
	Link      string
	Published *time.Time

	// Textual content in decreasing richness.
	Content     string
	Description string

	// Image candidates, checked in the order declared here.
	MediaContentURL   string
	MediaThumbnailURL string
	EnclosureURL      string
	EnclosureType     string
	ImageURL          string
	ITunesImageURL    string
}

// SkipReason explains why normalization produced no article for an item.
type SkipReason string

const (
	// SkipNone means the item was normalized successfully.
	SkipNone SkipReason = ""
	// SkipMissingTitle means the item had no usable title.
	SkipMissingTitle SkipReason = "missing_title"
	// SkipMissingLink means the item had no usable link.
	SkipMissingLink SkipReason = "missing_link"
)

// Normalize converts one raw feed item into a canonical article, or reports
// why it was dropped. Malformed or absent optional fields are never an
// error; only a missing title or link drops the item.
func Normalize(item RawItem, sourceName string, now time.Time) (*entity.NewsArticle, SkipReason) {
	if strings.TrimSpace(item.Title) == "" {
		return nil, SkipMissingTitle
	}
	if strings.TrimSpace(item.Link) == "" {
		return nil, SkipMissingLink
	}

	snippet := htmlToText(item.Description)

	content := firstNonEmpty(item.Content, item.Description, snippet)
	description := firstNonEmpty(snippet, item.Description)

	publishedAt := now
	if item.Published != nil {
		publishedAt = *item.Published
	}

	return &entity.NewsArticle{
		Title:       truncateRunes(item.Title, entity.MaxTitleLen),
		Description: truncateRunes(description, entity.MaxDescriptionLen),
		Content:     content,
		ImageURL:    resolveImageURL(item),
		SourceURL:   item.Link,
		SourceName:  sourceName,
		PublishedAt: publishedAt,
		CreatedAt:   now,
		IsActive:    true,
	}, SkipNone
}

// resolveImageURL picks the item's image by fixed precedence: media:content,
// media:thumbnail, an image enclosure, the generic image field, podcast
// artwork, and finally the first <img src> embedded in the richest text.
func resolveImageURL(item RawItem) string {
	if item.MediaContentURL != "" {
		return item.MediaContentURL
	}
	if item.MediaThumbnailURL != "" {
		return item.MediaThumbnailURL
	}
	if item.EnclosureURL != "" && strings.HasPrefix(item.EnclosureType, "image/") {
		return item.EnclosureURL
	}
	if item.ImageURL != "" {
		return item.ImageURL
	}
	if item.ITunesImageURL != "" {
		return item.ITunesImageURL
	}
	return firstImageSrc(firstNonEmpty(item.Content, item.Description))
}

// firstImageSrc returns the src of the first <img> tag in the given HTML
// fragment, or "" when the fragment has none or does not parse.
func firstImageSrc(html string) string {
	if html == "" || !strings.Contains(html, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return src
}

// htmlToText strips markup from an HTML fragment and collapses whitespace,
// producing the short snippet used for list previews.
func htmlToText(html string) string {
	if html == "" {
		return ""
	}
	if !strings.ContainsAny(html, "<&") {
		return strings.Join(strings.Fields(html), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// truncateRunes hard-caps s at max runes. The UI layer adds ellipses
// separately; storage only enforces the column limit.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
