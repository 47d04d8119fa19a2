package catalog

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/rematerial/rematerial-backend/internal/domain"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

type ProjectRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*types.Project, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Project, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)

	Upsert(ctx context.Context, tx *gorm.DB, rows []*types.Project) error
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{
		db:  db,
		log: baseLog.With("repo", "ProjectRepo"),
	}
}

func (r *projectRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Project, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Project
	if err := t.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Project, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id <= 0 {
		return nil, nil
	}
	var row types.Project
	err := t.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *projectRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(ctx).Model(&types.Project{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *projectRepo) Upsert(ctx context.Context, tx *gorm.DB, rows []*types.Project) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&rows).Error
}
