package catalog

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/rematerial/rematerial-backend/internal/domain"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

type MaterialRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*types.Material, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Material, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []int64) ([]*types.Material, error)

	Upsert(ctx context.Context, tx *gorm.DB, rows []*types.Material) error
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return &materialRepo{
		db:  db,
		log: baseLog.With("repo", "MaterialRepo"),
	}
}

func (r *materialRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Material, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Material
	if err := t.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Material, error) {
	if id <= 0 {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *materialRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []int64) ([]*types.Material, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Material
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert writes catalog rows keyed by id. Only the seed loader calls this.
func (r *materialRepo) Upsert(ctx context.Context, tx *gorm.DB, rows []*types.Material) error {
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
