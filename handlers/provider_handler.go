package handlers

import (
	"net/http"

	"github.com/upb/llm-cascade/providers"
	"github.com/upb/llm-cascade/utils"
	"go.uber.org/zap"
)

// ProviderStatus describes one provider's place in the cascade
type ProviderStatus struct {
	Name       string `json:"name"`
	Dialect    string `json:"dialect"`
	Model      string `json:"model,omitempty"`
	Configured bool   `json:"configured"`
}

// ProviderListResponse represents the provider listing response
type ProviderListResponse struct {
	Providers []ProviderStatus `json:"providers"`
}

// ProviderHandler reports which providers are configured, in priority order.
// Diagnostics only; the listing never drives routing.
type ProviderHandler struct {
	configured map[string]bool
	logger     *zap.Logger
}

// NewProviderHandler creates a new ProviderHandler from the set of provider
// names that hold a usable credential.
func NewProviderHandler(configuredNames []string, logger *zap.Logger) *ProviderHandler {
	configured := make(map[string]bool, len(configuredNames))
	for _, name := range configuredNames {
		configured[name] = true
	}
	return &ProviderHandler{
		configured: configured,
		logger:     logger,
	}
}

// HandleListProviders handles GET /api/v1/providers
func (h *ProviderHandler) HandleListProviders(w http.ResponseWriter, r *http.Request) {
	descs := providers.ListDescriptors()
	statuses := make([]ProviderStatus, len(descs))
	for i, desc := range descs {
		statuses[i] = ProviderStatus{
			Name:       desc.Name,
			Dialect:    string(desc.Dialect),
			Model:      desc.Model,
			Configured: h.configured[desc.Name],
		}
	}

	_ = utils.WriteOK(w, ProviderListResponse{Providers: statuses})
}
