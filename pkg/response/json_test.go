package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONWritesPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"id": "trip-1"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if body["id"] != "trip-1" {
		t.Errorf("body = %v", body)
	}
}

func TestOKWrapsMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, "Trip deleted successfully")

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body Message
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if body.Message != "Trip deleted successfully" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestErrorHelpersSetStatus(t *testing.T) {
	cases := []struct {
		name  string
		write func(http.ResponseWriter, string)
		want  int
	}{
		{"bad request", BadRequest, http.StatusBadRequest},
		{"not found", NotFound, http.StatusNotFound},
		{"forbidden", Forbidden, http.StatusForbidden},
		{"unauthorized", Unauthorized, http.StatusUnauthorized},
		{"internal", InternalError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec, "nope")

			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
			var body Message
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body not JSON: %v", err)
			}
			if body.Message != "nope" {
				t.Errorf("message = %q", body.Message)
			}
		})
	}
}
