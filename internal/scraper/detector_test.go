package scraper

import (
	"testing"
)

func TestBlockDetector(t *testing.T) {
	d := NewBlockDetector(DefaultBlockStatuses, append([]string{"  "}, DefaultBlockMarkers...))

	tests := []struct {
		name     string
		status   int
		body     string
		want     bool
		wantKind string
	}{
		{name: "503 triggers", status: 503, body: "<html>Service Unavailable</html>", want: true, wantKind: "status"},
		{name: "429 triggers", status: 429, want: true, wantKind: "status"},
		{name: "captcha marker triggers", status: 200, body: captchaPage, want: true, wantKind: "marker"},
		{name: "marker is case-insensitive", status: 200, body: "To discuss AUTOMATED ACCESS to Amazon data please contact", want: true, wantKind: "marker"},
		{name: "support address triggers", status: 200, body: "api-services-support@amazon.com", want: true, wantKind: "marker"},
		{name: "normal page passes", status: 200, body: productPage, want: false},
		{name: "404 is not a block", status: 404, body: "<html>Page Not Found</html>", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, got := d.Detect(FetchResponse{StatusCode: tt.status, Body: []byte(tt.body)})
			if got != tt.want {
				t.Fatalf("expected %v got %v", tt.want, got)
			}
			if got && block.Kind != tt.wantKind {
				t.Fatalf("expected kind %q got %q", tt.wantKind, block.Kind)
			}
		})
	}
}

func TestNilBlockDetector(t *testing.T) {
	var d *BlockDetector
	if _, blocked := d.Detect(FetchResponse{StatusCode: 503}); blocked {
		t.Fatal("nil detector must not block")
	}
}
