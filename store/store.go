// Package store provides gorm-backed persistence for the platform entities.
// Each aggregate gets its own store struct over a shared *gorm.DB; request
// handlers compose store calls inside one transaction per request.
package store

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/odp-platform/odp/errors"
)

// Open connects to postgres with error translation enabled so unique
// constraint violations surface as gorm.ErrDuplicatedKey.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger: logger.New(
			log.New(os.Stdout, "[db] ", log.LstdFlags),
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
}

// translate maps database-level errors to the API taxonomy. Unique
// constraint violations from concurrent inserts become Conflict rather than
// an internal fault.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.NotFoundf("%s", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Conflictf("%s already exists", what)
	default:
		return err
	}
}
