package router

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/shandysiswandi/cybershield/internal/pkg/stacktrace"
)

func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}

			//nolint:errorlint // sentinel panic value is compared directly
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(r.Context(), "panic on the server", "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(r.Context(), "panic on the server", "panic", rvr, "stack", string(stack))
			}

			writeJSON(w, errorResponse{Reason: "INTERNAL", Message: "Internal server error"}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
