package dashboard

import (
	"net/http"

	"github.com/erpcore/erp-api/internal/transport"
	"github.com/erpcore/erp-api/pkg/logger"
)

type ServiceAPI interface {
	GetSummary() (*Summary, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.GetSummary()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load dashboard summary")
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}
