package scraper

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/marketplace-scraper/internal/marketplace"
	"github.com/JakeFAU/marketplace-scraper/internal/metrics"
)

var (
	resultContainers = []string{
		`div[data-component-type="s-search-result"]`,
		`.s-result-item[data-asin]`,
	}

	resultTitleLinks = []string{
		"h2 a.a-link-normal",
		"a.s-line-clamp-2",
		".a-text-normal[href]",
		"h2.a-size-base-plus a",
	}

	resultBrandSelectors = []string{
		".a-row .a-size-base-plus.a-color-base",
		".s-line-clamp-1 span",
	}

	resultImageSelectors = []string{
		"img.s-image",
		".s-product-image-container img",
	}

	resultRatingSelectors = []string{
		`[aria-label*="out of 5"]`,
		"i.a-icon-star-small",
		".a-icon-star",
		"span.a-icon-alt",
	}

	resultReviewSelectors = []string{
		`span[aria-label*="ratings"]`,
		`span[aria-label*="reviews"]`,
		".a-size-base.s-underline-text",
	}

	resultPrimeSelectors = []string{
		"i.a-icon-prime",
		".a-icon-prime",
		`[aria-label="Prime"]`,
	}

	nextPageSelectors = []string{
		"a.s-pagination-next:not(.s-pagination-disabled)",
		"li.a-last:not(.a-disabled) a",
		`a[aria-label="Go to next page"]`,
	}

	reviewCount     = regexp.MustCompile(`(\d[\d,.]*)\s*([KkM])?`)
	discountPattern = regexp.MustCompile(`(\d+)\s*%\s*off`)
	dealPattern     = regexp.MustCompile(`(?i)\bdeal\b`)
	productPath     = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})(?:[/?#]|$)`)
)

// SearchProducts runs a keyword search, or fetches searchURL when it is
// set, and parses up to maxPages result pages. Like GetProductDetails it
// never fails; results collected before an error are returned.
func (c *Client) SearchProducts(ctx context.Context, query, searchURL string, maxPages int) []SearchResult {
	results, err := c.Search(ctx, query, searchURL, maxPages)
	if err != nil {
		c.logger.Warn("search failed",
			zap.String("query", query),
			zap.String("search_url", searchURL),
			zap.Int("results", len(results)),
			zap.Error(err),
		)
	}
	return results
}

// Search is SearchProducts with the error that stopped pagination. A
// maxPages of zero or less uses Config.SearchPages.
func (c *Client) Search(ctx context.Context, query, searchURL string, maxPages int) ([]SearchResult, error) {
	logger := c.logger.With(zap.String("lookup_id", uuid.NewString()))

	pageURL := strings.TrimSpace(searchURL)
	if pageURL == "" {
		if strings.TrimSpace(query) == "" {
			metrics.ObserveLookup("search", "invalid")
			return nil, fmt.Errorf("%w: empty search query", ErrInvalidInput)
		}
		pageURL = c.normalizer.SearchURL(c.cfg.CountryCode, query)
	}
	if maxPages <= 0 {
		maxPages = c.cfg.SearchPages
	}
	base := c.normalizer.BaseURL(c.normalizer.InferCountryCode(pageURL))

	var (
		results []SearchResult
		seen    = make(map[string]struct{})
		referer string
	)
	for page := 1; page <= maxPages && pageURL != ""; page++ {
		pageLog := logger.With(zap.Int("page", page), zap.String("url", pageURL))
		resp, err := c.fetchPage(ctx, pageLog, pageURL, referer)
		if err != nil {
			metrics.ObserveLookup("search", "failed")
			return results, fmt.Errorf("scraper: search page %d: %w", page, err)
		}
		found := ParseSearchPage(resp.Body, base)
		if len(found) == 0 {
			pageLog.Info("search page had no results, stopping")
			break
		}
		for _, r := range found {
			if _, dup := seen[r.ASIN]; dup {
				continue
			}
			seen[r.ASIN] = struct{}{}
			results = append(results, r)
		}
		pageLog.Info("search page parsed", zap.Int("found", len(found)), zap.Int("total", len(results)))

		referer = pageURL
		pageURL = NextPageURL(resp.Body, base)
	}
	status := "ok"
	if len(results) == 0 {
		status = "empty"
	}
	metrics.ObserveLookup("search", status)
	return results, nil
}

// ParseSearchPage extracts the listings of a search results page. Result
// URLs are canonical product URLs under baseURL. Sponsored placeholders and
// listings without an identifier or title are skipped.
func ParseSearchPage(body []byte, baseURL string) []SearchResult {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	var containers *goquery.Selection
	for _, sel := range resultContainers {
		if containers = doc.Find(sel); containers.Length() > 0 {
			break
		}
	}

	var results []SearchResult
	containers.Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("AdHolder") {
			return
		}
		if r, ok := parseSearchResult(s, baseURL); ok {
			results = append(results, r)
		}
	})
	return results
}

func parseSearchResult(s *goquery.Selection, baseURL string) (SearchResult, bool) {
	asin := strings.TrimSpace(s.AttrOr("data-asin", ""))
	if !marketplace.IsProductID(asin) {
		return SearchResult{}, false
	}
	r := SearchResult{ASIN: asin}

	link := firstSelection(s, resultTitleLinks)
	if link == nil {
		return SearchResult{}, false
	}
	if label, ok := nonEmpty(link.AttrOr("aria-label", "")); ok {
		r.Title = label
	} else if span := link.Find("span").First(); span.Length() > 0 {
		r.Title = cleanText(span.Text())
	} else {
		r.Title = cleanText(link.Text())
	}
	if r.Title == "" {
		return SearchResult{}, false
	}
	r.URL = marketplace.ResolveURL(baseURL, "/dp/"+asin)

	for _, sel := range resultBrandSelectors {
		if v, ok := nonEmpty(cleanText(s.Find(sel).First().Text())); ok && v != r.Title {
			r.Brand = ptr(v)
			break
		}
	}

	parseSearchPrice(s, &r)

	if img := firstSelection(s, resultImageSelectors); img != nil {
		if v, ok := largestSrcset(img.AttrOr("srcset", "")); ok {
			r.ImgURL = ptr(v)
		} else if v, ok := nonEmpty(img.AttrOr("src", "")); ok {
			r.ImgURL = ptr(v)
		}
	}

	for _, sel := range resultRatingSelectors {
		el := s.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		text := el.AttrOr("aria-label", "")
		if text == "" {
			text = el.Text()
		}
		if v, ok := parseRating(text); ok {
			r.Rating = ptr(v)
			break
		}
	}

	for _, sel := range resultReviewSelectors {
		el := s.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		text := el.AttrOr("aria-label", "")
		if text == "" {
			text = el.Text()
		}
		if n, ok := parseReviewCount(text); ok {
			r.ReviewsCount = ptr(n)
			break
		}
	}

	r.Prime = firstSelection(s, resultPrimeSelectors) != nil
	if v, ok := nonEmpty(cleanText(s.Find(".a-badge-text").First().Text())); ok {
		r.Badge = ptr(v)
	}
	r.ColorVariants = parseColorVariants(s, baseURL)
	if v, ok := parseDeliveryInfo(s); ok {
		r.DeliveryInfo = ptr(v)
	}
	r.Deal = s.Find("span, .a-badge").FilterFunction(func(_ int, el *goquery.Selection) bool {
		return dealPattern.MatchString(el.Text())
	}).Length() > 0
	return r, true
}

// parseColorVariants reads the color swatches of a listing. Swatches
// without a name are skipped.
func parseColorVariants(s *goquery.Selection, baseURL string) []ColorVariant {
	var variants []ColorVariant
	s.Find(".s-color-swatch-outer-circle a").Each(func(_ int, a *goquery.Selection) {
		name, ok := nonEmpty(cleanText(a.AttrOr("aria-label", "")))
		if !ok {
			return
		}
		v := ColorVariant{Name: name, URL: marketplace.ResolveURL(baseURL, a.AttrOr("href", ""))}
		if m := productPath.FindStringSubmatch(v.URL); m != nil {
			v.ASIN = ptr(m[1])
			v.URL = marketplace.ResolveURL(baseURL, "/dp/"+m[1])
		}
		variants = append(variants, v)
	})
	return variants
}

// parseDeliveryInfo returns the innermost row mentioning delivery, falling
// back to an aria-label that does.
func parseDeliveryInfo(s *goquery.Selection) (string, bool) {
	var info string
	s.Find(".a-row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if !mentionsDelivery(row.Text()) {
			return true
		}
		inner := row.Find(".a-row").FilterFunction(func(_ int, in *goquery.Selection) bool {
			return mentionsDelivery(in.Text())
		})
		if inner.Length() > 0 {
			return true
		}
		info = cleanText(row.Text())
		return false
	})
	if info != "" {
		return info, true
	}
	label := s.Find(`[aria-label*="delivery"], [aria-label*="Delivery"]`).First().AttrOr("aria-label", "")
	return nonEmpty(cleanText(label))
}

func mentionsDelivery(text string) bool {
	return strings.Contains(strings.ToLower(text), "delivery")
}

func parseSearchPrice(s *goquery.Selection, r *SearchResult) {
	raw := cleanText(s.Find(".a-price:not(.a-text-price) .a-offscreen").First().Text())
	if v, ok := ParsePrice(raw); ok {
		r.Price = ptr(v)
		if cur, ok := currencyFromRaw(raw); ok {
			r.Currency = ptr(cur)
		}
	} else if v, ok := priceFromParts(s); ok {
		r.Price = ptr(v)
	}
	if r.Currency == nil {
		if v, ok := nonEmpty(cleanText(s.Find(".a-price-symbol").First().Text())); ok {
			r.Currency = ptr(v)
		}
	}

	origRaw := cleanText(s.Find(".a-price.a-text-price .a-offscreen").First().Text())
	if orig, ok := ParsePrice(origRaw); ok && orig > 0 {
		r.OriginalPrice = ptr(orig)
		if r.Price != nil && *r.Price > 0 && *r.Price < orig {
			r.DiscountPercent = ptr(int(math.Round(100 - *r.Price/orig*100)))
		}
	}
	if r.DiscountPercent == nil {
		if m := discountPattern.FindStringSubmatch(s.Text()); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				r.DiscountPercent = ptr(n)
			}
		}
	}
}

// NextPageURL returns the absolute URL of the next results page, or "" on
// the last page.
func NextPageURL(body []byte, baseURL string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	for _, sel := range nextPageSelectors {
		if href, ok := doc.Find(sel).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
			return marketplace.ResolveURL(baseURL, href)
		}
	}
	return ""
}

func firstSelection(s *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if found := s.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	return nil
}

// largestSrcset returns the last candidate of a srcset, which lists
// densities in ascending order.
func largestSrcset(srcset string) (string, bool) {
	parts := strings.Split(srcset, ",")
	for i := len(parts) - 1; i >= 0; i-- {
		fields := strings.Fields(parts[i])
		if len(fields) > 0 {
			return fields[0], true
		}
	}
	return "", false
}

func parseReviewCount(text string) (int, bool) {
	m := reviewCount.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	digits := strings.NewReplacer(",", "", ".", "").Replace(m[1])
	scale := 1.0
	switch m[2] {
	case "K", "k":
		scale = 1_000
		digits = strings.ReplaceAll(m[1], ",", "")
	case "M":
		scale = 1_000_000
		digits = strings.ReplaceAll(m[1], ",", "")
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	return int(math.Round(v * scale)), true
}
