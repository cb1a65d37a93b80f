package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func originRequest(origin string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

func TestCheckOrigin(t *testing.T) {
	wildcard := NewWSHandler(nil, "*")
	assert.True(t, wildcard.checkOrigin(originRequest("https://evil.example.com")))

	listed := NewWSHandler(nil, "https://app.example.com, https://staging.example.com")
	assert.True(t, listed.checkOrigin(originRequest("https://app.example.com")))
	assert.True(t, listed.checkOrigin(originRequest("https://staging.example.com")))
	assert.False(t, listed.checkOrigin(originRequest("https://evil.example.com")))

	// Non-browser clients send no Origin header.
	assert.True(t, listed.checkOrigin(originRequest("")))
}
