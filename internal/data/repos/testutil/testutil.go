package testutil

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	types "github.com/rematerial/rematerial-backend/internal/domain"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

var (
	dbOnce sync.Once
	db     *gorm.DB
	dbErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error

	isolatedSeq atomic.Int64
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	}
}

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens the shared test database. TEST_POSTGRES_DSN selects a real postgres;
// otherwise an in-memory sqlite database is used.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		cfg := gormConfig()

		if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
			db, dbErr = gorm.Open(postgres.Open(dsn), cfg)
		} else {
			db, dbErr = gorm.Open(sqlite.Open("file::memory:"), cfg)
			if dbErr == nil {
				// the in-memory database lives only as long as its connection
				sqlDB, err := db.DB()
				if err != nil {
					dbErr = err
					return
				}
				sqlDB.SetMaxOpenConns(1)
				sqlDB.SetMaxIdleConns(1)
				sqlDB.SetConnMaxLifetime(0)
			}
		}
		if dbErr != nil {
			return
		}

		dbErr = db.AutoMigrate(types.Models()...)
	})

	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return db
}

// Tx begins a transaction that is rolled back when the test ends.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

// IsolatedDB returns a database no other test can see, for tests that commit
// rows through the repos. Under sqlite each call opens its own named in-memory
// database; under TEST_POSTGRES_DSN the shared database is truncated on cleanup.
func IsolatedDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	if os.Getenv("TEST_POSTGRES_DSN") != "" {
		shared := DB(tb)
		truncate := func() {
			err := shared.Exec("TRUNCATE TABLE material_preferences, building_projects, materials RESTART IDENTITY").Error
			if err != nil {
				tb.Errorf("truncate test tables: %v", err)
			}
		}
		truncate()
		tb.Cleanup(truncate)
		return shared
	}

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, isolatedSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		tb.Fatalf("open isolated db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		tb.Fatalf("isolated db handle: %v", err)
	}
	// the named database is dropped once its last connection closes
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := gdb.AutoMigrate(types.Models()...); err != nil {
		tb.Fatalf("migrate isolated db: %v", err)
	}
	return gdb
}
