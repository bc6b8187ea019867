package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"
)

// createFee records one payment and returns its id.
func createFee(t *testing.T, r routerAndToken, userID uint, amount float64, description string) uint {
	t.Helper()
	w := doJSON(t, r.router, http.MethodPost, "/payments/fees/", r.token, map[string]any{
		"student":     userID,
		"amount":      amount,
		"description": description,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create fee: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	return uint(decodeBody(t, w)["id"].(float64))
}

func feeList(t *testing.T, r routerAndToken, query string) []map[string]any {
	t.Helper()
	w := doJSON(t, r.router, http.MethodGet, "/payments/fees/"+query, r.token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list fees: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return list
}

func TestFeeFilters(t *testing.T) {
	r, _ := newTestRouter(t)
	registerUser(t, r, "payer@example.com", "student")
	access, _, userID := loginUser(t, r, "payer@example.com")
	rt := routerAndToken{router: r, token: access}

	for _, amount := range []float64{10, 50, 100} {
		createFee(t, rt, userID, amount, "term fee")
	}

	// Amount bounds are inclusive and conjunctive
	list := feeList(t, rt, "?min_amount=20&max_amount=100")
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}
	if list[0]["amount"].(float64) != 50 || list[1]["amount"].(float64) != 100 {
		t.Fatalf("expected amounts [50 100], got %v", list)
	}

	// Student filter plus today's date matches everything just created
	today := time.Now().Format("2006-01-02")
	list = feeList(t, rt, fmt.Sprintf("?student=%d&date=%s", userID, today))
	if len(list) != 3 {
		t.Fatalf("expected 3 records for today, got %d", len(list))
	}

	// A different student id matches nothing
	list = feeList(t, rt, "?student=9999")
	if len(list) != 0 {
		t.Fatalf("expected no records, got %d", len(list))
	}

	// Malformed filter values are rejected
	w := doJSON(t, r, http.MethodGet, "/payments/fees/?min_amount=lots", access, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad filter, got %d", w.Code)
	}
}

func TestFeeDetailCRUD(t *testing.T) {
	r, _ := newTestRouter(t)
	registerUser(t, r, "crud@example.com", "student")
	access, _, userID := loginUser(t, r, "crud@example.com")
	rt := routerAndToken{router: r, token: access}

	id := createFee(t, rt, userID, 75.50, "lab fee")

	// Retrieve
	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/payments/fees/%d/", id), access, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["amount"].(float64) != 75.50 || body["description"] != "lab fee" {
		t.Fatalf("unexpected fee %v", body)
	}
	if body["student_name"] != "Test User" {
		t.Fatalf("expected joined student name, got %v", body["student_name"])
	}

	// Update amount and description; date_paid is not client-controlled
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/payments/fees/%d/", id), access, map[string]any{
		"student":     userID,
		"amount":      80.00,
		"description": "lab fee (corrected)",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["amount"].(float64) != 80.00 {
		t.Fatalf("update did not apply")
	}

	// Delete, then the record is gone
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/payments/fees/%d/", id), access, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/payments/fees/%d/", id), access, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}

	// Missing ids are 404 on every verb
	w = doJSON(t, r, http.MethodDelete, "/payments/fees/4242/", access, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestFeeSummaryForStudent(t *testing.T) {
	r, _ := newTestRouter(t)
	registerUser(t, r, "summary@example.com", "student")
	access, _, userID := loginUser(t, r, "summary@example.com")
	rt := routerAndToken{router: r, token: access}

	createFee(t, rt, userID, 100, "")
	createFee(t, rt, userID, 250, "")

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/payments/fees/%d/summary/", userID), access, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["total_paid"].(float64) != 350 || body["total_payments"].(float64) != 2 {
		t.Fatalf("unexpected summary %v", body)
	}

	// Inclusive date range covering today still matches
	today := time.Now().Format("2006-01-02")
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/payments/fees/%d/summary/?start=%s&end=%s", userID, today, today), access, nil)
	body = decodeBody(t, w)
	if body["total_payments"].(float64) != 2 {
		t.Fatalf("expected range to include today, got %v", body)
	}

	// A range in the future matches nothing but still returns zeros
	future := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/payments/fees/%d/summary/?start=%s", userID, future), access, nil)
	body = decodeBody(t, w)
	if body["total_paid"].(float64) != 0 || body["total_payments"].(float64) != 0 {
		t.Fatalf("expected zero summary, got %v", body)
	}
}

func TestFeeSummaryZeroRecords(t *testing.T) {
	r, _ := newTestRouter(t)
	registerUser(t, r, "nofees@example.com", "student")
	access, _, userID := loginUser(t, r, "nofees@example.com")

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/payments/fees/%d/summary/", userID), access, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty summary, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["total_paid"].(float64) != 0 || body["total_payments"].(float64) != 0 {
		t.Fatalf("expected zeros, got %v", body)
	}
}

func TestOverallFeeSummary(t *testing.T) {
	r, _ := newTestRouter(t)
	registerUser(t, r, "one@example.com", "student")
	registerUser(t, r, "two@example.com", "student")
	accessOne, _, idOne := loginUser(t, r, "one@example.com")
	_, _, idTwo := loginUser(t, r, "two@example.com")
	rt := routerAndToken{router: r, token: accessOne}

	createFee(t, rt, idOne, 40, "")
	createFee(t, rt, idTwo, 60, "")

	w := doJSON(t, r, http.MethodGet, "/payments/fees/summary/overall/", accessOne, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["total_amount_received"].(float64) != 100 || body["total_number_of_payments"].(float64) != 2 {
		t.Fatalf("unexpected overall summary %v", body)
	}
}

func TestFeeValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	registerUser(t, r, "strict@example.com", "student")
	access, _, userID := loginUser(t, r, "strict@example.com")

	// Non-positive amount
	w := doJSON(t, r, http.MethodPost, "/payments/fees/", access, map[string]any{
		"student": userID,
		"amount":  -5,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative amount, got %d", w.Code)
	}

	// Unknown user reference
	w = doJSON(t, r, http.MethodPost, "/payments/fees/", access, map[string]any{
		"student": 9999,
		"amount":  10,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown user, got %d", w.Code)
	}

	// Auth required on every payments route
	w = doJSON(t, r, http.MethodGet, "/payments/fees/", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}
