package crawler

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocator(t *testing.T) *Locator {
	t.Helper()
	locator, err := NewLocator(`(?i)Code produit\s*:`, []string{"article", "li", "div"}, 6, 300)
	require.NoError(t, err)
	return locator
}

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestLocatorFindsDistinctBlocks(t *testing.T) {
	html := `<html><body><ul>
		<li><a href="/p/1">Produit 1</a><span>Code produit : A-1</span></li>
		<li><a href="/p/2">Produit 2</a><span>Code produit : A-2</span></li>
		<li><a href="/p/3">Produit 3</a><span>code produit: A-3</span></li>
	</ul></body></html>`

	blocks := newTestLocator(t).Find(docFrom(t, html))
	assert.Len(t, blocks, 3)
}

func TestLocatorCollapsesNestedMarkers(t *testing.T) {
	// two markers inside the same qualifying container resolve to one block
	html := `<html><body>
		<div class="card">
			<a href="/p/1">Produit</a>
			<span>Code produit : A-1</span>
			<span>Code produit : A-1</span>
		</div>
	</body></html>`

	blocks := newTestLocator(t).Find(docFrom(t, html))
	assert.Len(t, blocks, 1)
}

func TestLocatorDepthLimit(t *testing.T) {
	// the only qualifying container sits more than 6 levels above the marker
	html := `<html><body>
		<div><a href="/p/1">lien</a>
			<table><tbody><tr><td>
				<table><tbody><tr><td>
					<span>Code produit : A-1</span>
				</td></tr></tbody></table>
			</td></tr></tbody></table>
		</div>
	</body></html>`

	blocks := newTestLocator(t).Find(docFrom(t, html))
	assert.Empty(t, blocks)
}

func TestLocatorRequiresHyperlink(t *testing.T) {
	html := `<html><body>
		<div><span>Code produit : A-1</span></div>
	</body></html>`

	blocks := newTestLocator(t).Find(docFrom(t, html))
	assert.Empty(t, blocks)
}

func TestLocatorNoMarkers(t *testing.T) {
	html := `<html><body><div><a href="/p/1">Produit sans code</a></div></body></html>`

	blocks := newTestLocator(t).Find(docFrom(t, html))
	assert.Empty(t, blocks)
}

func TestLocatorPicksNearestContainer(t *testing.T) {
	html := `<html><body>
		<div id="outer">
			<article id="inner">
				<a href="/p/1">Produit</a>
				<span>Code produit : A-1</span>
			</article>
		</div>
	</body></html>`

	blocks := newTestLocator(t).Find(docFrom(t, html))
	require.Len(t, blocks, 1)
	id, _ := blocks[0].Sel.Attr("id")
	assert.Equal(t, "inner", id)
}
