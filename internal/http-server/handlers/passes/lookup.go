package passes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"HomeDesk/internal/lib/api/response"
	"HomeDesk/internal/lib/sl"
	passsvc "HomeDesk/internal/service/passes"
)

// Lookup returns a pass by code without consuming it. The returned
// status reflects the validity window at the time of the request.
func Lookup(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.passes")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("pass lookup not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("pass lookup not available"))
			return
		}

		code := chi.URLParam(r, "code")
		if code == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Pass code required"))
			return
		}

		pass, err := handler.Lookup(r.Context(), code)
		if err != nil {
			if errors.Is(err, passsvc.ErrPassNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Pass not found"))
				return
			}
			logger.Error("pass lookup", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Lookup failed"))
			return
		}

		render.JSON(w, r, response.Ok(pass))
	}
}
