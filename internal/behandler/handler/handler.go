package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"isdialogmelding/internal/behandler/models"
	id "isdialogmelding/pkg/domain"
	dErrors "isdialogmelding/pkg/domain-errors"
	"isdialogmelding/pkg/platform/httputil"
	"isdialogmelding/pkg/platform/middleware/auth"
	"isdialogmelding/pkg/requestcontext"
)

const (
	HeaderPersonident = "nav-personident"

	msgNoAuthorization = "No Authorization header supplied"
	msgNoPersonident   = "No PersonIdent supplied"
)

// Service defines the behandler operations used by the HTTP layer.
type Service interface {
	GetBehandlere(ctx context.Context, personident id.Personident, token, callID string) ([]models.BehandlerMedType, error)
}

// Handler serves the behandler API.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register registers the behandler routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/v1/behandler/personident", h.handleGetBehandlere)
}

// handleGetBehandlere lists the behandlere the person in the nav-personident
// header can be contacted through.
func (h *Handler) handleGetBehandlere(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callID := requestcontext.CallID(ctx)

	token := requestcontext.BearerToken(ctx)
	if token == "" {
		token = auth.BearerToken(r)
	}
	if token == "" {
		h.logger.WarnContext(ctx, "could not retrieve behandlere", "reason", msgNoAuthorization, "call_id", callID)
		httputil.WriteText(w, http.StatusBadRequest, msgNoAuthorization)
		return
	}

	personident, err := id.ParsePersonident(r.Header.Get(HeaderPersonident))
	if err != nil {
		h.logger.WarnContext(ctx, "could not retrieve behandlere", "reason", msgNoPersonident, "call_id", callID)
		httputil.WriteText(w, http.StatusBadRequest, msgNoPersonident)
		return
	}

	behandlere, err := h.service.GetBehandlere(ctx, personident, token, callID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get behandlere",
			"call_id", callID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get behandlere"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toDTOs(behandlere))
}
