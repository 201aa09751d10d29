package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/shared"
)

// RequireBody rejects a missing, empty or "{}" JSON body with 400.
func RequireBody(responder *shared.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.ContentLength == 0 {
				responder.Error(w, r, shared.ErrBlankBody)
				return
			}
			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, shared.MaxBodyBytes))
			if err != nil {
				responder.Error(w, r, shared.ErrBlankBody)
				return
			}
			if isBlank(raw) {
				responder.Error(w, r, shared.ErrBlankBody)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))
			next.ServeHTTP(w, r)
		})
	}
}

func isBlank(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil && len(obj) == 0 {
		return true
	}
	return false
}
