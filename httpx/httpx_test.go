package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONError(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONError(rr, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"name": "required"})

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "validation_failed" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestJSONEncodeFailure(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusOK, map[string]any{"bad": make(chan int)})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestStatusRecorder(t *testing.T) {
	rr := httptest.NewRecorder()
	rec := NewStatusRecorder(rr)
	if NewStatusRecorder(rec) != rec {
		t.Fatal("recorder should not be wrapped twice")
	}
	if rec.Status != http.StatusOK {
		t.Fatalf("default status = %d", rec.Status)
	}
	rec.WriteHeader(http.StatusTeapot)
	_, _ = rec.Write([]byte("hi"))
	if rec.Status != http.StatusTeapot || rec.Bytes != 2 || rr.Code != http.StatusTeapot {
		t.Fatalf("recorder = %+v, underlying = %d", rec, rr.Code)
	}
}

func TestWantsJSON(t *testing.T) {
	cases := []struct {
		accept, contentType string
		want                bool
	}{
		{"application/json", "", true},
		{"text/html,application/json;q=0.9", "", true},
		{"text/html", "", false},
		{"", "application/json; charset=utf-8", true},
		{"", "application/x-www-form-urlencoded", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Accept", tc.accept)
		r.Header.Set("Content-Type", tc.contentType)
		if got := WantsJSON(r); got != tc.want {
			t.Fatalf("WantsJSON(%q, %q) = %v", tc.accept, tc.contentType, got)
		}
	}
}
