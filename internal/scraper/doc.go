// Package scraper fetches marketplace product and search pages and extracts
// flat records from them.
//
// A Client resolves a product URL or bare identifier to its canonical URL,
// fetches it through a Fetcher while rotating browser identities on anti-bot
// responses, and runs an ordered list of extraction strategies per field.
// Lookups degrade instead of failing: GetProductDetails always returns a
// Product, whose fields are nil when they could not be extracted.
package scraper
