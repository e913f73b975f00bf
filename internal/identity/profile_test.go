package identity

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	p, ok := Lookup(" Chrome119 ")
	require.True(t, ok)
	assert.Equal(t, DefaultProfile, p.Name)
	assert.Contains(t, p.UserAgent(), "Chrome/119")

	_, ok = Lookup("netscape4")
	assert.False(t, ok)
}

func TestNamesCoversProfiles(t *testing.T) {
	t.Parallel()

	names := Names()
	require.Len(t, names, len(Profiles()))
	for _, n := range names {
		_, ok := Lookup(n)
		assert.True(t, ok, n)
	}
}

func TestProfileHeader(t *testing.T) {
	t.Parallel()

	p, ok := Lookup("chrome124")
	require.True(t, ok)

	h := p.Header("", nil)
	assert.Equal(t, p.UserAgent(), h.Get("User-Agent"))
	assert.Equal(t, "none", h.Get("Sec-Fetch-Site"))
	assert.Empty(t, h.Get("Referer"))
	assert.True(t, strings.HasPrefix(h.Get("Accept"), "text/html"))

	h = p.Header("https://www.amazon.com/", http.Header{
		"Accept-Language": {"de-DE,de;q=0.9"},
		"X-Extra":         {"a", "b"},
	})
	assert.Equal(t, "https://www.amazon.com/", h.Get("Referer"))
	assert.Equal(t, "same-origin", h.Get("Sec-Fetch-Site"))
	assert.Equal(t, []string{"de-DE,de;q=0.9"}, h.Values("Accept-Language"))
	assert.Equal(t, []string{"a", "b"}, h.Values("X-Extra"))

	// The profile's own header set must not be mutated by Header.
	assert.Equal(t, "en-US,en;q=0.9", p.Header("", nil).Get("Accept-Language"))
}

func TestGeckoProfilesOmitClientHints(t *testing.T) {
	t.Parallel()

	p, ok := Lookup("firefox125")
	require.True(t, ok)
	assert.Empty(t, p.Header("", nil).Get("Sec-Ch-Ua"))
}
