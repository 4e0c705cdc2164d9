package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/erd-studio/engine/internal/diagram"
	"github.com/erd-studio/engine/internal/models"
	appErr "github.com/erd-studio/engine/pkg/errors"
)

type projectRepository struct {
	base BaseRepository[models.Project]
	db   *gorm.DB
}

var _ Gateway = (*projectRepository)(nil)
var _ Checker = (*projectRepository)(nil)

// NewProjectRepository returns a Gateway over the projects table. Works with
// both the postgres and the sqlite dialector.
func NewProjectRepository(db *gorm.DB) Gateway {
	return &projectRepository{base: NewBaseRepository[models.Project](db), db: db}
}

func (r *projectRepository) GetAll(ctx context.Context) ([]*diagram.Project, error) {
	rows, err := r.base.List(ctx, "updated_at DESC")
	if err != nil {
		return nil, err
	}
	out := make([]*diagram.Project, 0, len(rows))
	for i := range rows {
		p, err := rows[i].Diagram()
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "decode project failed").WithMeta("id", rows[i].ID)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *projectRepository) Get(ctx context.Context, id string) (*diagram.Project, error) {
	var row models.Project
	if err := r.base.GetByID(ctx, id, &row); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, appErr.NotFound("project", id)
		}
		return nil, err
	}
	p, err := row.Diagram()
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "decode project failed").WithMeta("id", id)
	}
	return p, nil
}

func (r *projectRepository) Put(ctx context.Context, p *diagram.Project) error {
	row, err := models.NewProject(p)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInvalid, "encode project failed").WithMeta("id", p.ID)
	}
	return r.base.Save(ctx, row)
}

func (r *projectRepository) UpdateIfNewer(ctx context.Context, p *diagram.Project) (bool, error) {
	row, err := models.NewProject(p)
	if err != nil {
		return false, appErr.Wrap(err, appErr.CodeInvalid, "encode project failed").WithMeta("id", p.ID)
	}
	res := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ? AND updated_at <= ?", row.ID, row.UpdatedAt).
		Updates(map[string]any{
			"name":       row.Name,
			"nodes":      row.Nodes,
			"edges":      row.Edges,
			"updated_at": row.UpdatedAt,
		})
	if res.Error != nil {
		return false, appErr.Wrap(res.Error, appErr.CodeInternal, "update project failed").WithMeta("id", p.ID)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", row.ID).Count(&n).Error; err != nil {
		return false, appErr.Wrap(err, appErr.CodeInternal, "count project failed").WithMeta("id", p.ID)
	}
	if n == 0 {
		return false, appErr.NotFound("project", p.ID)
	}
	return false, nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	err := r.base.Delete(ctx, id)
	if appErr.IsCode(err, appErr.CodeNotFound) {
		return nil
	}
	return err
}

func (r *projectRepository) Check(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "get sql db failed")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "database unreachable")
	}
	return nil
}
