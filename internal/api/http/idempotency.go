package http

import (
	"bytes"
	"net/http"

	"bliss-balance-backend/internal/logger"
	"bliss-balance-backend/internal/repository"
)

const idempotencyKeyHeader = "Idempotency-Key"

// Idempotency replays the stored response for a repeated Idempotency-Key
// instead of executing a money movement twice. Requests without the header
// pass through untouched. The key is reserved before the handler runs, so
// two concurrent requests under the same key can never both execute: the
// loser is replayed or told the original is still in progress. Only
// successful responses are kept, so a caller can retry a failed attempt
// under the same key.
func Idempotency(repo repository.IdempotencyRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotencyKeyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			status, body, found, err := repo.Get(r.Context(), key)
			if err != nil {
				writeError(w, err)
				return
			}
			if found && status != 0 {
				replay(w, status, body)
				return
			}

			acquired, err := repo.Reserve(r.Context(), key)
			if err != nil {
				writeError(w, err)
				return
			}
			if !acquired {
				// Lost the reservation race. The winner either finished,
				// in which case its response is replayed, or is still
				// running the handler.
				status, body, found, err = repo.Get(r.Context(), key)
				if err != nil {
					writeError(w, err)
					return
				}
				if found && status != 0 {
					replay(w, status, body)
					return
				}
				writeJSON(w, http.StatusConflict, map[string]string{
					"error": "a request with this idempotency key is already in progress",
				})
				return
			}

			recorder := &bodyRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			if recorder.status < 200 || recorder.status >= 300 {
				if err := repo.Release(r.Context(), key); err != nil {
					logger.Warn("failed to release idempotency key", "key", key, "error", err)
				}
				return
			}
			if err := repo.Save(r.Context(), key, recorder.status, recorder.body.Bytes()); err != nil {
				logger.Warn("failed to store idempotent response", "key", key, "error", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

type bodyRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *bodyRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *bodyRecorder) Write(p []byte) (int, error) {
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}
