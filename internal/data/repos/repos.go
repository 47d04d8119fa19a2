package repos

import (
	"gorm.io/gorm"

	"github.com/rematerial/rematerial-backend/internal/data/repos/catalog"
	"github.com/rematerial/rematerial-backend/internal/data/repos/preferences"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

type MaterialRepo = catalog.MaterialRepo
type ProjectRepo = catalog.ProjectRepo

type PreferenceRepo = preferences.PreferenceRepo

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return catalog.NewMaterialRepo(db, baseLog)
}
func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return catalog.NewProjectRepo(db, baseLog)
}

func NewPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceRepo {
	return preferences.NewPreferenceRepo(db, baseLog)
}

// IsUniqueViolation reports whether err is a unique-constraint failure on either driver.
func IsUniqueViolation(err error) bool { return preferences.IsUniqueViolation(err) }
