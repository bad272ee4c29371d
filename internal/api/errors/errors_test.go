package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteErrorFormat(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter)
		wantStatus int
		wantCode   string
	}{
		{"validation", func(w http.ResponseWriter) { ValidationError(w, "bad format") }, http.StatusBadRequest, CodeValidationError},
		{"not linked", func(w http.ResponseWriter) { DriveNotLinked(w, "link first") }, http.StatusBadRequest, CodeDriveNotLinked},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "login") }, http.StatusUnauthorized, CodeUnauthorized},
		{"rate limited", func(w http.ResponseWriter) { RateLimited(w, "slow down") }, http.StatusTooManyRequests, CodeRateLimited},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "disk full") }, http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("статус = %d, ожидали %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var body Body
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("некорректный JSON: %v", err)
			}
			if body.Code != tt.wantCode || body.Error == "" {
				t.Errorf("тело = %+v, ожидали code %q и непустой error", body, tt.wantCode)
			}
		})
	}
}
