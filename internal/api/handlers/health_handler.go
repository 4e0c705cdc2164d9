package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/erd-studio/engine/internal/repository"
	appErr "github.com/erd-studio/engine/pkg/errors"
)

const readinessTimeout = 2 * time.Second

type HealthHandler struct {
	checks []repository.Checker
}

// NewHealthHandler reports ready once every given backend answers.
func NewHealthHandler(checks ...repository.Checker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, map[string]string{"status": "ok"}, nil)
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()
	for _, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			writeError(w, r, appErr.Wrap(err, appErr.CodeUnavailable, "storage not ready"))
			return
		}
	}
	writeData(w, r, http.StatusOK, map[string]string{"status": "ready"}, nil)
}
