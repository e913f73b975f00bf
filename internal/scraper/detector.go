package scraper

import (
	"bytes"
	"fmt"
	"strings"
)

// DefaultBlockStatuses are the status codes treated as anti-bot responses.
var DefaultBlockStatuses = []int{403, 429, 500, 502, 503, 504}

// DefaultBlockMarkers are case-insensitive body substrings that identify
// CAPTCHA and robot-check pages.
var DefaultBlockMarkers = []string{
	"captcha",
	"api-services-support@amazon.com",
	"to discuss automated access to amazon data",
}

// BlockDetector implements Detector using status codes and body markers.
type BlockDetector struct {
	statuses map[int]struct{}
	markers  [][]byte
}

// NewBlockDetector constructs a detector. Blank markers are ignored.
func NewBlockDetector(statuses []int, markers []string) *BlockDetector {
	set := make(map[int]struct{}, len(statuses))
	for _, code := range statuses {
		set[code] = struct{}{}
	}
	lowerMarkers := make([][]byte, 0, len(markers))
	for _, m := range markers {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		lowerMarkers = append(lowerMarkers, bytes.ToLower([]byte(m)))
	}
	return &BlockDetector{statuses: set, markers: lowerMarkers}
}

// Detect reports whether resp is a block page.
func (d *BlockDetector) Detect(resp FetchResponse) (Block, bool) {
	if d == nil {
		return Block{}, false
	}
	if _, ok := d.statuses[resp.StatusCode]; ok {
		return Block{Kind: "status", Reason: fmt.Sprintf("status %d", resp.StatusCode)}, true
	}
	if marker, ok := d.containsMarker(resp.Body); ok {
		return Block{Kind: "marker", Reason: fmt.Sprintf("marker %q", marker)}, true
	}
	return Block{}, false
}

func (d *BlockDetector) containsMarker(body []byte) (string, bool) {
	if len(body) == 0 || len(d.markers) == 0 {
		return "", false
	}
	lowerBody := bytes.ToLower(body)
	for _, m := range d.markers {
		if bytes.Contains(lowerBody, m) {
			return string(m), true
		}
	}
	return "", false
}
