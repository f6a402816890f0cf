package tagging

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"

	"github.com/odp-platform/odp/migrate"
	"github.com/odp-platform/odp/seed"
)

// TestMain migrates and seeds the test database. Without ODP_TEST_DSN the
// whole package is skipped.
func TestMain(m *testing.M) {
	dsn := getTestDSN()
	if strings.TrimSpace(dsn) == "" {
		log.Printf("ODP_TEST_DSN not set, skipping tagging tests")
		return
	}

	driver := "postgres"

	var ready bool
	for i := 0; i < 20; i++ {
		if db, err := sql.Open(driver, dsn); err == nil {
			if err = db.Ping(); err == nil {
				ready = true
				_ = db.Close()
				break
			}
			_ = db.Close()
		}
		time.Sleep(1 * time.Second)
	}
	if !ready {
		log.Printf("postgres is not ready: dsn=%s", dsn)
		return
	}

	logger := log.New(os.Stdout, "[tagging-test] ", log.LstdFlags)
	if err := migrate.Run(migrate.Options{Driver: driver, DSN: dsn, Command: "up", Logger: logger}); err != nil {
		panic(fmt.Sprintf("tagging test migration failed: %v", err))
	}
	if err := seed.Run(seed.Options{Driver: driver, DSN: dsn, Command: "up", Logger: logger}); err != nil {
		panic(fmt.Sprintf("tagging test seed failed: %v", err))
	}

	os.Exit(m.Run())
}

func getTestDSN() string {
	return os.Getenv("ODP_TEST_DSN")
}
