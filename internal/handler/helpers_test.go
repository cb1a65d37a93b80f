package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/jobs?limit=25&offset=abc", nil)

	assert.Equal(t, 25, queryInt(r, "limit", 50))
	assert.Equal(t, 0, queryInt(r, "offset", 0), "non-numeric falls back to default")
	assert.Equal(t, 50, queryInt(r, "missing", 50))
}
