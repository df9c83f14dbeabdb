package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	err := WriteJSON(rec, http.StatusOK, map[string]string{"hello": "world"})
	if err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	if body["hello"] != "world" {
		t.Errorf("body = %v", body)
	}
}

func TestWriteJSON_NilData(t *testing.T) {
	rec := httptest.NewRecorder()

	if err := WriteJSON(rec, http.StatusOK, nil); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
}

func TestWriteBadGateway(t *testing.T) {
	rec := httptest.NewRecorder()

	_ = WriteBadGateway(rec, "everything is down")

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	if resp.Error != "upstream_failure" {
		t.Errorf("error = %q, want upstream_failure", resp.Error)
	}
	if resp.Message != "everything is down" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestWriteBadRequest(t *testing.T) {
	rec := httptest.NewRecorder()

	_ = WriteBadRequest(rec, "bad input", map[string]interface{}{"field": "reason"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	if resp.Details["field"] != "reason" {
		t.Errorf("details = %v", resp.Details)
	}
}

func TestWriteInternalServerError_DefaultMessage(t *testing.T) {
	rec := httptest.NewRecorder()

	_ = WriteInternalServerError(rec, "")

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	if resp.Message != "Internal server error" {
		t.Errorf("message = %q", resp.Message)
	}
}
