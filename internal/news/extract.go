package news

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// itemImage resolves the image URL for a feed entry: the item's own image or
// an image enclosure if the feed provides one, otherwise the first <img>
// embedded in the content or description HTML.
func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	if src := firstImageInHTML(item.Content); src != "" {
		return src
	}
	return firstImageInHTML(item.Description)
}

// firstImageInHTML returns the src of the first img tag in an HTML fragment,
// or "" if there is none or the fragment doesn't parse.
func firstImageInHTML(html string) string {
	if !strings.Contains(html, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img").First().Attr("src")
	return strings.TrimSpace(src)
}
