package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"bliss-balance-backend/internal/domain"
	"bliss-balance-backend/internal/repository"

	_ "github.com/lib/pq"
)

// prepareDB connects to the database named by DATABASE_URL. The tests in
// this package need a real PostgreSQL instance; they are skipped in short
// mode and when no database is configured.
func prepareDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	var db *sql.DB
	var err error

	// Retry connection as DB might still be starting up
	for i := 0; i < 10; i++ {
		db, err = sql.Open("postgres", connStr)
		if err == nil {
			err = db.Ping()
			if err == nil {
				return db
			}
		}
		time.Sleep(2 * time.Second)
	}
	t.Fatalf("failed to connect to database: %v", err)
	return nil
}

// seedAccount inserts an account with a unique id and email so tests can
// share a database without cleaning up after each other.
func seedAccount(t *testing.T, repo repository.AccountRepository, role domain.Role, balance int64, commissionRate *float64) *domain.Account {
	t.Helper()

	id := uuid.NewString()
	account := &domain.Account{
		ID:             id,
		Role:           role,
		DisplayName:    fmt.Sprintf("%s %s", role, id[:8]),
		Email:          fmt.Sprintf("%s-%s@it.example", role, id[:8]),
		Balance:        balance,
		CommissionRate: commissionRate,
	}
	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("failed to seed %s account: %v", role, err)
	}
	return account
}
