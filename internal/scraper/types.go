package scraper

import (
	"net/http"
	"time"
)

// Field keys of the flat product record.
const (
	FieldTitle    = "title"
	FieldPrice    = "price"
	FieldCurrency = "currency"
	FieldImgURL   = "img_url"
	FieldBrand    = "brand"
)

// ProductFields lists the keys every product record carries, in output order.
var ProductFields = []string{FieldTitle, FieldPrice, FieldCurrency, FieldImgURL, FieldBrand}

// Product is the flat record extracted from a product page. Nil fields
// could not be extracted.
type Product struct {
	Title    *string  `json:"title"`
	Price    *float64 `json:"price"`
	Currency *string  `json:"currency"`
	ImgURL   *string  `json:"img_url"`
	Brand    *string  `json:"brand"`
	Rating   *float64 `json:"rating,omitempty"`
	ASIN     string   `json:"asin,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// Fields returns the record as an untyped mapping with the five product keys
// always present. Absent values are nil.
func (p Product) Fields() map[string]any {
	out := make(map[string]any, len(ProductFields))
	out[FieldTitle] = derefOrNil(p.Title)
	out[FieldPrice] = derefOrNil(p.Price)
	out[FieldCurrency] = derefOrNil(p.Currency)
	out[FieldImgURL] = derefOrNil(p.ImgURL)
	out[FieldBrand] = derefOrNil(p.Brand)
	return out
}

// Missing returns the keys of the product fields that are nil.
func (p Product) Missing() []string {
	var missing []string
	fields := p.Fields()
	for _, key := range ProductFields {
		if fields[key] == nil {
			missing = append(missing, key)
		}
	}
	return missing
}

// IsEmpty reports whether none of the product fields were extracted.
func (p Product) IsEmpty() bool {
	return len(p.Missing()) == len(ProductFields)
}

// SearchResult is one listing on a search results page.
type SearchResult struct {
	ASIN            string         `json:"asin"`
	Title           string         `json:"title"`
	URL             string         `json:"url,omitempty"`
	Brand           *string        `json:"brand,omitempty"`
	Price           *float64       `json:"price,omitempty"`
	Currency        *string        `json:"currency,omitempty"`
	OriginalPrice   *float64       `json:"original_price,omitempty"`
	DiscountPercent *int           `json:"discount_percent,omitempty"`
	ImgURL          *string        `json:"img_url,omitempty"`
	Rating          *float64       `json:"rating,omitempty"`
	ReviewsCount    *int           `json:"reviews_count,omitempty"`
	Prime           bool           `json:"prime"`
	Badge           *string        `json:"badge,omitempty"`
	ColorVariants   []ColorVariant `json:"color_variants,omitempty"`
	DeliveryInfo    *string        `json:"delivery_info,omitempty"`
	Deal            bool           `json:"deal"`
}

// ColorVariant is a color swatch shown on a search listing. URL is the
// canonical product URL when the swatch links to a product page.
type ColorVariant struct {
	Name string  `json:"name"`
	URL  string  `json:"url"`
	ASIN *string `json:"asin"`
}

// FetchRequest captures everything needed to fetch one page.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

func derefOrNil[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func ptr[T any](v T) *T {
	return &v
}
