package scraper

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/marketplace-scraper/internal/marketplace"
)

// Containers that hold the buy-box price, most specific first.
var priceContainers = []string{
	"#corePrice_feature_div",
	"#corePriceDisplay_desktop_feature_div",
	"#apex_desktop",
	"#price",
	"#priceblock_ourprice",
	"#priceblock_dealprice",
}

var (
	titleStrategies = []textStrategy{
		selectorText("#productTitle"),
		selectorText("#title"),
		selectorAttr(`meta[name="title"]`, "content"),
		selectorAttr(`meta[property="og:title"]`, "content"),
		selectorText("title"),
	}

	imageSelectors = []string{
		"#landingImage",
		"#imgBlkFront",
		"#main-image",
		"#imgTagWrapperId img",
	}

	brandStrategies = []textStrategy{
		bylineStoreBrand,
		bylinePrefixBrand,
		selectorText("tr.po-brand td.a-span9 span"),
		detailBulletBrand,
	}

	brandPrefix = regexp.MustCompile(`(?i)^brand\s*:\s*(.+)$`)
)

// textStrategy extracts one string value from a document.
type textStrategy func(doc *goquery.Document) (string, bool)

// ParseProduct extracts a product record from a product page. Each field is
// extracted independently; a field no strategy can fill stays nil.
func ParseProduct(body []byte) Product {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Product{}
	}
	var p Product
	if v, ok := firstOf(doc, titleStrategies); ok {
		p.Title = ptr(v)
	}
	price, raw, ok := extractPrice(doc)
	if ok {
		p.Price = ptr(price)
	} else {
		raw = ""
	}
	if v, ok := extractCurrency(doc, raw); ok {
		p.Currency = ptr(v)
	}
	if v, ok := extractImage(doc); ok {
		p.ImgURL = ptr(v)
	}
	if v, ok := firstOf(doc, brandStrategies); ok {
		p.Brand = ptr(v)
	}
	if v, ok := extractRating(doc); ok {
		p.Rating = ptr(v)
	}
	return p
}

func firstOf(doc *goquery.Document, strategies []textStrategy) (string, bool) {
	for _, s := range strategies {
		if v, ok := s(doc); ok {
			return v, true
		}
	}
	return "", false
}

func selectorText(sel string) textStrategy {
	return func(doc *goquery.Document) (string, bool) {
		return nonEmpty(cleanText(doc.Find(sel).First().Text()))
	}
}

func selectorAttr(sel, attr string) textStrategy {
	return func(doc *goquery.Document) (string, bool) {
		v, _ := doc.Find(sel).First().Attr(attr)
		return nonEmpty(cleanText(v))
	}
}

func bylineStoreBrand(doc *goquery.Document) (string, bool) {
	return marketplace.ExtractBrand(cleanText(doc.Find("#bylineInfo").First().Text()))
}

func bylinePrefixBrand(doc *goquery.Document) (string, bool) {
	m := brandPrefix.FindStringSubmatch(cleanText(doc.Find("#bylineInfo").First().Text()))
	if m == nil {
		return "", false
	}
	return nonEmpty(m[1])
}

func detailBulletBrand(doc *goquery.Document) (string, bool) {
	var (
		brand string
		found bool
	)
	doc.Find("#detailBullets_feature_div li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		label := strings.ToLower(li.Find(".a-text-bold").First().Text())
		if !strings.Contains(label, "brand") {
			return true
		}
		brand, found = nonEmpty(cleanText(li.Find(".a-text-bold + span").First().Text()))
		return false
	})
	return brand, found
}

// extractPrice returns the price and the raw offscreen text it came from,
// if any. The whole/fraction split is tried before the offscreen text. The
// raw text is only returned when it holds a number itself.
func extractPrice(doc *goquery.Document) (float64, string, bool) {
	scopes := priceScopes(doc)
	for _, scope := range scopes {
		if v, ok := priceFromParts(scope); ok {
			raw := rawOffscreen(scope)
			if _, numeric := ParsePrice(raw); !numeric {
				raw = ""
			}
			return v, raw, true
		}
	}
	for _, scope := range scopes {
		raw := rawOffscreen(scope)
		if raw == "" {
			continue
		}
		if v, ok := ParsePrice(raw); ok {
			return v, raw, true
		}
	}
	return 0, "", false
}

// priceScopes lists the price containers present on the page followed by
// the whole document.
func priceScopes(doc *goquery.Document) []*goquery.Selection {
	scopes := make([]*goquery.Selection, 0, len(priceContainers)+1)
	for _, sel := range priceContainers {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			scopes = append(scopes, s)
		}
	}
	return append(scopes, doc.Selection)
}

func priceFromParts(scope *goquery.Selection) (float64, bool) {
	whole := digitsOnly(scope.Find(".a-price-whole").First().Text())
	if whole == "" {
		return 0, false
	}
	if fraction := digitsOnly(scope.Find(".a-price-fraction").First().Text()); fraction != "" {
		return ParsePrice(whole + "." + fraction)
	}
	return ParsePrice(whole)
}

func rawOffscreen(scope *goquery.Selection) string {
	return cleanText(scope.Find("span.a-offscreen").First().Text())
}

func extractCurrency(doc *goquery.Document, raw string) (string, bool) {
	for _, scope := range priceScopes(doc) {
		if v, ok := nonEmpty(cleanText(scope.Find(".a-price-symbol").First().Text())); ok {
			return v, true
		}
	}
	// Without a parsed price there is no text to read a currency from.
	if raw == "" {
		return "", false
	}
	return currencyFromRaw(raw)
}

func extractImage(doc *goquery.Document) (string, bool) {
	for _, sel := range imageSelectors {
		img := doc.Find(sel).First()
		if img.Length() == 0 {
			continue
		}
		if v, ok := imageURL(img); ok {
			return v, true
		}
	}
	return "", false
}

// imageURL walks the attribute chain of a product image element. Inline
// data URIs are placeholders and are skipped.
func imageURL(img *goquery.Selection) (string, bool) {
	for _, attr := range []string{"src", "data-src", "data-old-hires"} {
		v := strings.TrimSpace(img.AttrOr(attr, ""))
		if v != "" && !strings.HasPrefix(v, "data:") {
			return v, true
		}
	}
	return firstDynamicImage(img.AttrOr("data-a-dynamic-image", ""))
}

// firstDynamicImage returns the first key of a data-a-dynamic-image JSON
// object, in document order.
func firstDynamicImage(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return "", false
	}
	tok, err = dec.Token()
	if err != nil {
		return "", false
	}
	key, ok := tok.(string)
	if !ok {
		return "", false
	}
	return nonEmpty(key)
}

func extractRating(doc *goquery.Document) (float64, bool) {
	if pop := doc.Find("#acrPopover").First(); pop.Length() > 0 {
		if v, ok := parseRating(pop.AttrOr("title", "")); ok {
			return v, true
		}
		if v, ok := parseRating(pop.Text()); ok {
			return v, true
		}
	}
	return parseRating(doc.Find("span.a-icon-alt").First().Text())
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
