package leads

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ironbridge-it/website-api/internal/ratelimit"
	"github.com/ironbridge-it/website-api/pkg/logging"
)

func newTestHandler(limiter ratelimit.Limiter, repo Repository) *Handler {
	logger := logging.Discard()
	return NewHandler(NewIntake(limiter, repo, logger), logger)
}

func postContact(t *testing.T, h *Handler, body string, forwardedFor string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if forwardedFor != "" {
		req.Header.Set(ratelimit.ForwardedForHeader, forwardedFor)
	}
	w := httptest.NewRecorder()
	h.Submit(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.Error
}

func TestSubmit_Success(t *testing.T) {
	repo := NewInMemoryRepository()
	handler := newTestHandler(ratelimit.NewWindow(5, 15*time.Minute), repo)

	body, _ := json.Marshal(map[string]string{
		"name":    "Jane Doe",
		"email":   "jane@acme.com",
		"message": "Need help",
		"service": "cloud_migration",
	})
	w := postContact(t, handler, string(body), "203.0.113.7")

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var resp SubmitResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success true")
	}
	if resp.Message != "Thank you for contacting us. We will get back to you soon." {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.LeadID == "" {
		t.Fatal("expected a leadId")
	}

	lead := storedLead(t, repo, resp.LeadID)
	if lead.Service == nil || *lead.Service != ServiceCloudMigration {
		t.Errorf("expected service to be stored, got %v", lead.Service)
	}
	if lead.IPAddress != "203.0.113.7" {
		t.Errorf("expected forwarded address to be stored, got %q", lead.IPAddress)
	}
}

func TestSubmit_MissingFields(t *testing.T) {
	handler := newTestHandler(&stubLimiter{allow: true}, NewInMemoryRepository())

	w := postContact(t, handler, `{"name":"Jane Doe","email":"jane@acme.com"}`, "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if got := decodeError(t, w); got != "Missing required fields: name, email, message" {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestSubmit_InvalidEmail(t *testing.T) {
	handler := newTestHandler(&stubLimiter{allow: true}, NewInMemoryRepository())

	w := postContact(t, handler, `{"name":"Jane Doe","email":"jane at acme","message":"Need help"}`, "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if got := decodeError(t, w); got != "Invalid email address" {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestSubmit_RateLimited(t *testing.T) {
	handler := newTestHandler(ratelimit.NewWindow(5, 15*time.Minute), NewInMemoryRepository())
	body := `{"name":"Jane Doe","email":"jane@acme.com","message":"Need help"}`

	for i := 1; i <= 5; i++ {
		if w := postContact(t, handler, body, "198.51.100.1"); w.Code != http.StatusCreated {
			t.Fatalf("submission %d: expected %d, got %d", i, http.StatusCreated, w.Code)
		}
	}
	w := postContact(t, handler, body, "198.51.100.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, w.Code)
	}
	if got := decodeError(t, w); got != "Too many requests. Please try again later." {
		t.Fatalf("unexpected error %q", got)
	}

	if w := postContact(t, handler, body, "198.51.100.2"); w.Code != http.StatusCreated {
		t.Fatalf("other clients should not be limited, got %d", w.Code)
	}
}

func TestSubmit_MissingForwardedHeaderSharesUnknownBucket(t *testing.T) {
	handler := newTestHandler(ratelimit.NewWindow(1, time.Minute), NewInMemoryRepository())
	body := `{"name":"Jane Doe","email":"jane@acme.com","message":"Need help"}`

	if w := postContact(t, handler, body, ""); w.Code != http.StatusCreated {
		t.Fatalf("expected first anonymous submission to succeed, got %d", w.Code)
	}
	if w := postContact(t, handler, body, ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected anonymous callers to share a bucket, got %d", w.Code)
	}
}

func TestSubmit_InvalidJSON(t *testing.T) {
	handler := newTestHandler(&stubLimiter{allow: true}, NewInMemoryRepository())

	w := postContact(t, handler, "{", "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if got := decodeError(t, w); got != "Internal server error" {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestSubmit_NumericPhoneIsStoredAsText(t *testing.T) {
	repo := NewInMemoryRepository()
	handler := newTestHandler(&stubLimiter{allow: true}, repo)

	body := `{"name":"Jane Doe","email":"jane@acme.com","company":"Acme","phone":5550100,"message":"Need help"}`
	w := postContact(t, handler, body, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	var resp SubmitResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	lead := storedLead(t, repo, resp.LeadID)
	if lead.Phone == nil || *lead.Phone != "5550100" {
		t.Errorf("expected phone 5550100, got %v", lead.Phone)
	}
}

func TestSubmit_NullOptionalFieldIsEmpty(t *testing.T) {
	repo := NewInMemoryRepository()
	handler := newTestHandler(&stubLimiter{allow: true}, repo)

	body := `{"name":"Jane Doe","email":"jane@acme.com","company":"Acme","phone":null,"message":"Need help"}`
	w := postContact(t, handler, body, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
}

func TestSubmit_NumericEmailIsInvalid(t *testing.T) {
	handler := newTestHandler(&stubLimiter{allow: true}, NewInMemoryRepository())

	body := `{"name":"Jane Doe","email":12345,"company":"Acme","message":"Need help"}`
	w := postContact(t, handler, body, "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if got := decodeError(t, w); got != "Invalid email address" {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestSubmit_ObjectFieldIsMalformed(t *testing.T) {
	handler := newTestHandler(&stubLimiter{allow: true}, NewInMemoryRepository())

	body := `{"name":{"first":"Jane"},"email":"jane@acme.com","company":"Acme","message":"Need help"}`
	w := postContact(t, handler, body, "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestSubmit_RepositoryError(t *testing.T) {
	handler := newTestHandler(&stubLimiter{allow: true}, failingRepository{err: errors.New("pq: relation \"leads\" does not exist")})

	body, _ := json.Marshal(janeDoe)
	w := postContact(t, handler, string(body), "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d, got %d", http.StatusInternalServerError, w.Code)
	}
	raw := w.Body.String()
	if strings.Contains(raw, "relation") {
		t.Fatalf("store error detail leaked to caller: %s", raw)
	}
	if got := decodeError(t, bytesRecorder(raw)); got != "Failed to submit contact form" {
		t.Fatalf("unexpected error %q", got)
	}
}

func bytesRecorder(body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	rec.Body = bytes.NewBufferString(body)
	return rec
}
