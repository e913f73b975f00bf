// Package marketplace normalizes marketplace product URLs: it parses raw
// links into a product reference, rebuilds canonical /dp/ URLs, and pulls
// brand names out of byline text.
package marketplace
