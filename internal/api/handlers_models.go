package api

import (
	"net/http"

	"anjoman/internal/catalog"
)

// ModelsHandler exposes the model catalog.
type ModelsHandler struct {
	cat       *catalog.Catalog
	providers Providers
}

// NewModelsHandler creates a models handler.
func NewModelsHandler(cat *catalog.Catalog, providers Providers) *ModelsHandler {
	return &ModelsHandler{cat: cat, providers: providers}
}

// List handles GET /models. Only models whose provider has a configured
// API key are returned; clients cannot pick a model the service cannot call.
func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	providers := h.providers.Providers()
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": providers,
		"models":    h.cat.Available(providers),
	})
}
