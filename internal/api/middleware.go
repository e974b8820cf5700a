package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/booklens/booklens-server/internal/id"
)

// maxRequestIDLength bounds client supplied request ids.
const maxRequestIDLength = 64

// requestID tags each request with an id, reusing a sane X-Request-Id from
// the client. The id is stored under chi's key so middleware.Logger and
// middleware.GetReqID see it, and is echoed back in the response header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(middleware.RequestIDHeader)
		if reqID == "" || len(reqID) > maxRequestIDLength {
			reqID = id.RequestID()
		}

		w.Header().Set(middleware.RequestIDHeader, reqID)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
