package ruleshandler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"wagecore/internal/domain/tax"
	"wagecore/internal/transport/http/api"
	"wagecore/internal/transport/http/middleware"
)

type Handler struct {
	Registry *tax.Registry
}

func NewHandler(registry *tax.Registry) *Handler {
	return &Handler{Registry: registry}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/rules", h.HandleListRules)
}

type ruleRow struct {
	Jurisdiction   string     `json:"jurisdiction"`
	SchemaVersion  string     `json:"schemaVersion"`
	EffectiveStart time.Time  `json:"effectiveStart"`
	EffectiveEnd   *time.Time `json:"effectiveEnd,omitempty"`
	Kind           string     `json:"kind"`
}

func (h *Handler) HandleListRules(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	docs := h.Registry.Documents()
	rows := make([]ruleRow, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, ruleRow{
			Jurisdiction:   doc.Jurisdiction,
			SchemaVersion:  doc.SchemaVersion,
			EffectiveStart: doc.EffectiveStart,
			EffectiveEnd:   doc.EffectiveEnd,
			Kind:           doc.Rule.Kind,
		})
	}
	api.Success(w, map[string]any{"rules": rows}, requestID)
}
