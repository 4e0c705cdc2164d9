// Package queue moves editor writes off the request path through asynq.
package queue

import (
	"context"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/erd-studio/engine/internal/diagram"
	"github.com/erd-studio/engine/internal/queue/tasks"
	"github.com/erd-studio/engine/internal/repository"
	appErr "github.com/erd-studio/engine/pkg/errors"
	"github.com/erd-studio/engine/pkg/logger"
)

// Enqueuer is the subset of *asynq.Client used here.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// WriteBehind reads straight from the store and turns writes into
// project:persist tasks drained by cmd/worker.
type WriteBehind struct {
	store  repository.Gateway
	client Enqueuer
}

func NewWriteBehind(store repository.Gateway, client Enqueuer) *WriteBehind {
	return &WriteBehind{store: store, client: client}
}

func (w *WriteBehind) Get(ctx context.Context, id string) (*diagram.Project, error) {
	return w.store.Get(ctx, id)
}

func (w *WriteBehind) Put(ctx context.Context, p *diagram.Project) error {
	task, err := tasks.NewPersistTask(p)
	if err != nil {
		return err
	}
	info, err := w.client.EnqueueContext(ctx, task)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "enqueue persist task failed").WithMeta("id", p.ID)
	}
	logger.L().Debug("persist task enqueued", zap.String("project_id", p.ID), zap.String("task_id", info.ID))
	return nil
}
