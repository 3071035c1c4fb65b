package passes

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"HomeDesk/internal/lib/api/response"
	"HomeDesk/internal/lib/sl"
	passsvc "HomeDesk/internal/service/passes"
)

type CheckInRequest struct {
	Code string `json:"code" validate:"required,min=4"`
}

var validate = validator.New()

// CheckIn consumes a visitor pass presented at the front desk. A pass
// can be consumed only while its validity window is open; single-use
// passes are consumed at most once even under concurrent requests.
func CheckIn(log *slog.Logger, handler Core, hub Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.passes")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("check-in not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("check-in not available"))
			return
		}

		var req CheckInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid check-in request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid pass code"))
			return
		}

		pass, err := handler.CheckIn(r.Context(), req.Code)
		if err != nil {
			logger.With(slog.String("code", req.Code)).Error("check-in rejected", sl.Err(err))
			render.Status(r, statusFor(err))
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		logger.With(
			slog.String("code", pass.PassCode),
			slog.String("visitor", pass.VisitorName),
		).Info("pass checked in")

		if hub != nil {
			hub.BroadcastCheckIn(pass)
		}

		render.JSON(w, r, response.Ok(pass))
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, passsvc.ErrPassNotFound):
		return http.StatusNotFound
	case errors.Is(err, passsvc.ErrPassNotYet),
		errors.Is(err, passsvc.ErrPassExpired),
		errors.Is(err, passsvc.ErrPassUsed),
		errors.Is(err, passsvc.ErrPassInactive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
