package crawler

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Locator finds candidate product subtrees in a page. Site class names churn,
// so it anchors on a stable marker text ("Code produit :") instead of CSS
// selectors: every text node matching the marker is walked up the ancestor
// chain until a container-like element holding at least one hyperlink is
// found.
type Locator struct {
	marker         *regexp.Regexp
	containers     map[string]bool
	maxDepth       int
	fingerprintLen int
}

// NewLocator compiles the marker pattern and builds a locator. The container
// tag set and walk depth bound how far a marker may sit from its product
// block.
func NewLocator(markerPattern string, containerTags []string, maxDepth, fingerprintLen int) (*Locator, error) {
	marker, err := regexp.Compile(markerPattern)
	if err != nil {
		return nil, err
	}
	containers := make(map[string]bool, len(containerTags))
	for _, tag := range containerTags {
		containers[tag] = true
	}
	return &Locator{
		marker:         marker,
		containers:     containers,
		maxDepth:       maxDepth,
		fingerprintLen: fingerprintLen,
	}, nil
}

// Find returns the deduplicated candidate blocks of one page. Zero blocks is a
// valid outcome; it signals catalog exhaustion to the crawl controller.
func (l *Locator) Find(doc *goquery.Document) []Block {
	var markers []*html.Node
	for _, root := range doc.Selection.Nodes {
		collectMarkerTextNodes(root, l.marker, &markers)
	}

	var blocks []Block
	seen := make(map[string]bool)
	for _, marker := range markers {
		candidate := l.walkToContainer(marker)
		if candidate == nil {
			continue
		}

		sel := doc.FindNodes(candidate)
		fp := l.fingerprint(sel)
		// nested markers resolving to the same ancestor collapse to one block
		if seen[fp] {
			continue
		}
		seen[fp] = true
		blocks = append(blocks, Block{Sel: sel, Fingerprint: fp})
	}
	return blocks
}

// walkToContainer climbs the ancestor chain of a marker text node, up to the
// depth limit, and returns the first container-like element holding at least
// one hyperlink. Exhausting the limit yields nil.
func (l *Locator) walkToContainer(marker *html.Node) *html.Node {
	cur := marker.Parent
	for i := 0; i < l.maxDepth && cur != nil; i++ {
		if cur.Type == html.ElementNode && l.containers[cur.Data] && hasHyperlink(cur) {
			return cur
		}
		cur = cur.Parent
	}
	return nil
}

// fingerprint is a fixed-length prefix of the block's serialized content
func (l *Locator) fingerprint(sel *goquery.Selection) string {
	s, err := goquery.OuterHtml(sel)
	if err != nil {
		s = sel.Text()
	}
	runes := []rune(s)
	if len(runes) > l.fingerprintLen {
		return string(runes[:l.fingerprintLen])
	}
	return s
}

func collectMarkerTextNodes(n *html.Node, marker *regexp.Regexp, out *[]*html.Node) {
	if n.Type == html.TextNode && marker.MatchString(n.Data) {
		*out = append(*out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectMarkerTextNodes(c, marker, out)
	}
}

func hasHyperlink(n *html.Node) bool {
	if n.Type == html.ElementNode && n.Data == "a" {
		for _, attr := range n.Attr {
			if attr.Key == "href" && attr.Val != "" {
				return true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasHyperlink(c) {
			return true
		}
	}
	return false
}
