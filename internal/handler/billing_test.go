package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactLinkMonthly(t *testing.T) {
	h := NewBillingHandler("917379340224")
	req := httptest.NewRequest(http.MethodGet, "/api/billing/contact-link?plan=monthly", nil)
	rec := httptest.NewRecorder()

	h.ContactLink(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "monthly", resp["plan"])
	assert.Equal(t,
		"https://wa.me/917379340224?text=Hi%21+I+would+like+to+purchase+the+Monthly+Premium+plan.",
		resp["url"])
}

func TestContactLinkUnknownPlan(t *testing.T) {
	h := NewBillingHandler("917379340224")
	req := httptest.NewRequest(http.MethodGet, "/api/billing/contact-link?plan=lifetime", nil)
	rec := httptest.NewRecorder()

	h.ContactLink(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactLinkUnconfigured(t *testing.T) {
	h := NewBillingHandler("  ")
	req := httptest.NewRequest(http.MethodGet, "/api/billing/contact-link?plan=monthly", nil)
	rec := httptest.NewRecorder()

	h.ContactLink(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
