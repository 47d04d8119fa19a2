package preferences

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/rematerial/rematerial-backend/internal/domain"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

type PreferenceRepo interface {
	Get(ctx context.Context, tx *gorm.DB, projectID, materialID int64) (*types.Preference, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Preference, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID int64) ([]*types.Preference, error)
	ListSelectedWithMaterial(ctx context.Context, tx *gorm.DB, projectID int64) ([]*types.SelectedMaterial, error)

	Upsert(ctx context.Context, tx *gorm.DB, row *types.Preference) (*types.Preference, error)
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, projectID, materialID int64, score int) (bool, error)
	Increment(ctx context.Context, tx *gorm.DB, projectID, materialID int64) (*types.Preference, error)

	DeleteByID(ctx context.Context, tx *gorm.DB, id int64) error
}

type preferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceRepo {
	return &preferenceRepo{
		db:  db,
		log: baseLog.With("repo", "PreferenceRepo"),
	}
}

var pairConflict = []clause.Column{
	{Name: "project_id"},
	{Name: "material_id"},
}

func (r *preferenceRepo) Get(ctx context.Context, tx *gorm.DB, projectID, materialID int64) (*types.Preference, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if projectID <= 0 || materialID <= 0 {
		return nil, nil
	}
	var row types.Preference
	err := t.WithContext(ctx).
		Where("project_id = ? AND material_id = ?", projectID, materialID).
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

func (r *preferenceRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Preference, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id <= 0 {
		return nil, nil
	}
	var row types.Preference
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *preferenceRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID int64) ([]*types.Preference, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Preference
	if projectID <= 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("preference_score DESC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type selectedMaterialRow struct {
	types.Material `gorm:"embedded"`

	PreferenceID        int64
	PreferenceScore     int
	Selected            bool
	Notes               string
	PreferenceCreatedAt time.Time
	PreferenceUpdatedAt time.Time
}

func (r *preferenceRepo) ListSelectedWithMaterial(ctx context.Context, tx *gorm.DB, projectID int64) ([]*types.SelectedMaterial, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := []*types.SelectedMaterial{}
	if projectID <= 0 {
		return out, nil
	}
	var rows []selectedMaterialRow
	err := t.WithContext(ctx).
		Table("material_preferences AS mp").
		Select(`m.*,
			mp.id AS preference_id,
			mp.preference_score AS preference_score,
			mp.selected AS selected,
			mp.notes AS notes,
			mp.created_at AS preference_created_at,
			mp.updated_at AS preference_updated_at`).
		Joins("JOIN materials AS m ON mp.material_id = m.id").
		Where("mp.project_id = ? AND mp.selected = ?", projectID, true).
		Order("mp.preference_score DESC, mp.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		mat := rows[i].Material
		out = append(out, &types.SelectedMaterial{
			Material: &mat,
			Preference: &types.Preference{
				ID:              rows[i].PreferenceID,
				ProjectID:       projectID,
				MaterialID:      mat.ID,
				PreferenceScore: rows[i].PreferenceScore,
				Selected:        rows[i].Selected,
				Notes:           rows[i].Notes,
				CreatedAt:       rows[i].PreferenceCreatedAt,
				UpdatedAt:       rows[i].PreferenceUpdatedAt,
			},
		})
	}
	return out, nil
}

// Upsert inserts the (project, material) row or overwrites score, selected and
// notes of the existing one in a single statement. It returns the stored row.
func (r *preferenceRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.Preference) (*types.Preference, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ProjectID <= 0 || row.MaterialID <= 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	row.ID = 0
	row.CreatedAt = now
	row.UpdatedAt = now

	err := t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   pairConflict,
			DoUpdates: clause.AssignmentColumns([]string{"preference_score", "selected", "notes", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, t, row.ProjectID, row.MaterialID)
}

// CreateIfAbsent inserts an unselected row with the given score unless the pair
// already exists. It never modifies an existing row.
func (r *preferenceRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, projectID, materialID int64, score int) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if projectID <= 0 || materialID <= 0 {
		return false, nil
	}
	now := time.Now().UTC()
	row := &types.Preference{
		ProjectID:       projectID,
		MaterialID:      materialID,
		PreferenceScore: score,
		Selected:        false,
		Notes:           "",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	res := t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   pairConflict,
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		if IsUniqueViolation(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Increment adds one to the pair's score, creating it with score 1 when absent.
func (r *preferenceRepo) Increment(ctx context.Context, tx *gorm.DB, projectID, materialID int64) (*types.Preference, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if projectID <= 0 || materialID <= 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	row := &types.Preference{
		ProjectID:       projectID,
		MaterialID:      materialID,
		PreferenceScore: 1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err := t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: pairConflict,
			DoUpdates: clause.Assignments(map[string]interface{}{
				"preference_score": gorm.Expr("material_preferences.preference_score + 1"),
				"updated_at":       now,
			}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, t, projectID, materialID)
}

// DeleteByID removes the row; deleting an unknown id is not an error.
func (r *preferenceRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id int64) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id <= 0 {
		return nil
	}
	return t.WithContext(ctx).Where("id = ?", id).Delete(&types.Preference{}).Error
}

// IsUniqueViolation matches postgres 23505 and sqlite UNIQUE failures.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
