package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/erd-studio/engine/internal/diagram"
	"github.com/erd-studio/engine/internal/repository"
	appErr "github.com/erd-studio/engine/pkg/errors"
	"github.com/erd-studio/engine/pkg/logger"
)

const (
	// TypeProjectPersist writes one debounced project snapshot.
	TypeProjectPersist = "project:persist"
	// QueuePersist is the asynq queue persistence tasks run on.
	QueuePersist = "persist"
)

const persistTimeout = 30 * time.Second

// PersistPayload is the task payload for project:persist.
type PersistPayload struct {
	Project *diagram.Project `json:"project"`
}

// NewPersistTask builds a persist task for p. Failed writes are not retried:
// the next debounced snapshot supersedes this one.
func NewPersistTask(p *diagram.Project) (*asynq.Task, error) {
	if p == nil || p.ID == "" {
		return nil, appErr.New(appErr.CodeInvalid, "project id is required")
	}
	b, err := json.Marshal(PersistPayload{Project: p})
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "encode persist payload failed")
	}
	return asynq.NewTask(TypeProjectPersist, b,
		asynq.Queue(QueuePersist),
		asynq.MaxRetry(0),
		asynq.Timeout(persistTimeout),
	), nil
}

// PersistTaskHandler applies persist tasks to the durable store.
type PersistTaskHandler struct {
	store repository.Gateway
}

func NewPersistTaskHandler(store repository.Gateway) *PersistTaskHandler {
	return &PersistTaskHandler{store: store}
}

// HandlePersist writes the snapshot unless the stored record is newer or the
// project was deleted after the task was enqueued. The compare and the write
// happen in one store operation.
func (h *PersistTaskHandler) HandlePersist(ctx context.Context, t *asynq.Task) error {
	var p PersistPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid persist task payload", zap.Error(err))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.Project == nil || p.Project.ID == "" {
		logger.L().Error("persist task without project id")
		return fmt.Errorf("missing project id: %w", asynq.SkipRetry)
	}
	id := p.Project.ID

	applied, err := h.store.UpdateIfNewer(ctx, p.Project)
	switch {
	case appErr.IsCode(err, appErr.CodeNotFound):
		logger.L().Warn("dropping persist for deleted project", zap.String("project_id", id))
		return nil
	case err != nil:
		logger.L().Error("project save failed", zap.String("project_id", id), zap.Error(err))
		return err
	case !applied:
		logger.L().Debug("skipping stale persist task",
			zap.String("project_id", id),
			zap.Time("task", p.Project.UpdatedAt),
		)
		return nil
	}
	logger.L().Debug("project persisted", zap.String("project_id", id), zap.Int("nodes", len(p.Project.Nodes)))
	return nil
}
