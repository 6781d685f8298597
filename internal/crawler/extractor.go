package crawler

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"obedard/liquidationworker/helpers"
)

// Extractor turns one candidate block into a ProductRecord. The name is
// mandatory; a block without a hyperlink carrying text is rejected. Prices are
// assigned by value, not by display position: when a block shows exactly two
// distinct amounts the smaller one is the sale price and the larger the
// regular price, which stays correct even if the site swaps display order.
// Blocks with fewer or more than two distinct amounts keep their raw text but
// carry no prices.
type Extractor struct {
	origin     *url.URL
	skuRe      *regexp.Regexp
	amountRe   *regexp.Regexp
	inStockRe  *regexp.Regexp
	outStockRe *regexp.Regexp
}

// NewExtractor builds an extractor for one site. The SKU pattern is derived
// from the same marker the locator anchors on.
func NewExtractor(siteOrigin, markerPattern, currencySymbol, inStockPattern, outOfStockPattern string) (*Extractor, error) {
	origin, err := url.Parse(siteOrigin)
	if err != nil {
		return nil, err
	}
	skuRe, err := regexp.Compile(markerPattern + `\s*([A-Za-z0-9-]+)`)
	if err != nil {
		return nil, err
	}
	amountRe, err := regexp.Compile(`(\d[\d ]*[.,]\d{2})\s*` + regexp.QuoteMeta(currencySymbol))
	if err != nil {
		return nil, err
	}
	inStockRe, err := regexp.Compile(inStockPattern)
	if err != nil {
		return nil, err
	}
	outStockRe, err := regexp.Compile(outOfStockPattern)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		origin:     origin,
		skuRe:      skuRe,
		amountRe:   amountRe,
		inStockRe:  inStockRe,
		outStockRe: outStockRe,
	}, nil
}

// Extract returns the structured record for a block, or nil when the block is
// rejected.
func (e *Extractor) Extract(block Block) *ProductRecord {
	sel := block.Sel
	text := helpers.CollapseSpace(sel.Text())

	links := sel.Find("a[href]")

	// Name: first hyperlink with non-empty text
	var name string
	links.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if t := helpers.CollapseSpace(a.Text()); t != "" {
			name = t
			return false
		}
		return true
	})
	if name == "" {
		return nil
	}

	// URL: first hyperlink's reference, resolved against the site origin
	var link string
	if href, ok := links.First().Attr("href"); ok {
		link = e.resolve(href)
	}

	var image *string
	if src, ok := sel.Find("img").First().Attr("src"); ok && src != "" {
		resolved := e.resolve(src)
		image = &resolved
	}

	var sku *string
	if m := e.skuRe.FindStringSubmatch(text); m != nil {
		sku = &m[1]
	}

	// Out-of-stock takes precedence when both phrases somehow match
	availability := AvailabilityUnknown
	switch {
	case e.outStockRe.MatchString(text):
		availability = AvailabilityOutOfStock
	case e.inStockRe.MatchString(text):
		availability = AvailabilityInStock
	}

	sale, regular := e.assignPrices(text)

	return &ProductRecord{
		Name:         name,
		SKU:          sku,
		PriceRegular: regular,
		PriceSale:    sale,
		DiscountPct:  DiscountPct(sale, regular),
		Availability: availability,
		URL:          link,
		Image:        image,
		RawText:      text,
	}
}

// assignPrices scans the flattened text for currency amounts and applies the
// value-based policy: exactly two distinct amounts are required, the smaller
// becomes the sale price and the larger the regular price. Any other count is
// indeterminate and yields no prices.
func (e *Extractor) assignPrices(text string) (sale, regular *float64) {
	var distinct []float64
	for _, m := range e.amountRe.FindAllStringSubmatch(text, -1) {
		v := ParsePrice(m[1])
		if v == nil {
			continue
		}
		dup := false
		for _, d := range distinct {
			if d == *v {
				dup = true
				break
			}
		}
		if !dup {
			distinct = append(distinct, *v)
		}
	}

	if len(distinct) != 2 {
		return nil, nil
	}
	lo, hi := distinct[0], distinct[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	return &lo, &hi
}

func (e *Extractor) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return e.origin.ResolveReference(parsed).String()
}
