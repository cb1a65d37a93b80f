package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// BillingHandler builds the WhatsApp purchase-inquiry link for premium
// plans. Payment itself happens in the chat with sales; the server only
// hands out a prefilled wa.me URL.
type BillingHandler struct {
	whatsAppNumber string
}

func NewBillingHandler(whatsAppNumber string) *BillingHandler {
	return &BillingHandler{whatsAppNumber: strings.TrimSpace(whatsAppNumber)}
}

var planNames = map[string]string{
	"monthly": "Monthly Premium",
	"yearly":  "Yearly Premium",
}

// ContactLink answers {"url": "https://wa.me/<number>?text=..."} for the
// requested plan.
func (h *BillingHandler) ContactLink(w http.ResponseWriter, r *http.Request) {
	if h.whatsAppNumber == "" {
		writeError(w, http.StatusServiceUnavailable, "billing not configured")
		return
	}
	plan := r.URL.Query().Get("plan")
	planName, ok := planNames[plan]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown plan")
		return
	}
	message := fmt.Sprintf("Hi! I would like to purchase the %s plan.", planName)
	link := "https://wa.me/" + h.whatsAppNumber + "?text=" + url.QueryEscape(message)
	writeJSON(w, http.StatusOK, map[string]string{"url": link, "plan": plan})
}
