package htmlwalk

import (
	"golang.org/x/net/html"
)

// IsLinkTag checks whether the current node represents an <a> tag.
func IsLinkTag(node *html.Node) bool {
	return node.Type == html.ElementNode && node.Data == "a"
}

// HrefValue finds and returns the href attribute from an <a> tag.
// If there's no href, it returns an empty string.
func HrefValue(node *html.Node) string {
	for _, attr := range node.Attr {
		if attr.Key == "href" {
			return attr.Val
		}
	}
	return ""
}

// Anchors walks the parsed document and collects every href target found on
// an <a> tag, in document order. Empty hrefs are skipped.
func Anchors(root *html.Node) []string {
	var hrefs []string

	var visitNode func(*html.Node)
	visitNode = func(node *html.Node) {
		if IsLinkTag(node) {
			if href := HrefValue(node); href != "" {
				hrefs = append(hrefs, href)
			}
		}

		for child := node.FirstChild; child != nil; child = child.NextSibling {
			visitNode(child)
		}
	}

	visitNode(root)
	return hrefs
}
