package handler

import (
	"net/http"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/usecase"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/response"
)

type SystemHandler struct {
	systemUsecase usecase.SystemUsecase
}

func NewSystemHandler(systemUsecase usecase.SystemUsecase) *SystemHandler {
	return &SystemHandler{systemUsecase: systemUsecase}
}

func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "", h.systemUsecase.Info(r.Context()))
}

// Health answers 503 when the database or Redis is unreachable.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	res, healthy := h.systemUsecase.Health(r.Context())
	if !healthy {
		response.JSON(w, http.StatusServiceUnavailable, response.Response{
			Success: false,
			Message: "Service degraded",
			Data:    res,
		})
		return
	}
	response.Success(w, http.StatusOK, "Service healthy", res)
}
