package repository_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/truenumber/gameservice/internal/database"
	"github.com/truenumber/gameservice/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	return db
}

func seedBalance(t *testing.T, db *gorm.DB, userID string, balance int64) {
	t.Helper()
	require.NoError(t, db.Create(&model.UserBalance{UserID: userID, Balance: balance}).Error)
}

func newGame(userID string, n int, change, newBalance int64, at time.Time) *model.Game {
	id, _ := uuid.NewV7()
	return &model.Game{
		ID:              id.String(),
		UserID:          userID,
		GeneratedNumber: n,
		Result:          n > 70,
		BalanceChange:   change,
		NewBalance:      newBalance,
		Date:            at,
	}
}

var ctx = context.Background()
