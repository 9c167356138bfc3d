package repository

import (
	"context"
	"errors"
	"time"

	"github.com/truenumber/gameservice/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserBalanceNotFound = errors.New("USER_BALANCE_NOT_FOUND")
	ErrUserBalanceExists   = errors.New("USER_BALANCE_EXISTS")
)

type UserBalanceRepository interface {
	Create(ctx context.Context, ub *model.UserBalance) error
	FindByUserID(ctx context.Context, userID string) (model.UserBalance, error)
	FindByUserIDForUpdate(ctx context.Context, userID string) (model.UserBalance, error)
	Increment(ctx context.Context, userID string, delta int64) (int64, error)
	SetBalance(ctx context.Context, userID string, balance int64) error
	CreateAdjustment(ctx context.Context, adj *model.BalanceAdjustment) error
	SumAdjustments(ctx context.Context, userID string) (int64, error)
}

type userBalance struct {
	db *gorm.DB
}

func NewUserBalanceRepository(db *gorm.DB) UserBalanceRepository {
	return &userBalance{db: db}
}

func (r *userBalance) Create(ctx context.Context, ub *model.UserBalance) error {
	err := GetTx(ctx, r.db).Create(ub).Error
	if err == nil {
		return nil
	}

	if isDuplicateKey(err) {
		return ErrUserBalanceExists
	}

	return err
}

func (r *userBalance) FindByUserID(ctx context.Context, userID string) (model.UserBalance, error) {
	return r.find(GetTx(ctx, r.db), userID)
}

// FindByUserIDForUpdate locks the row until the surrounding transaction ends.
func (r *userBalance) FindByUserIDForUpdate(ctx context.Context, userID string) (model.UserBalance, error) {
	return r.find(GetTx(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (r *userBalance) find(db *gorm.DB, userID string) (model.UserBalance, error) {
	var ub model.UserBalance

	err := db.Where("user_id = ?", userID).First(&ub).Error
	if err == nil {
		return ub, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.UserBalance{}, ErrUserBalanceNotFound
	}

	return model.UserBalance{}, err
}

// Increment applies a relative change and returns the balance it produced.
// The update and the read-back share one transaction, so the returned value
// is exactly the post-increment snapshot even under concurrent plays.
func (r *userBalance) Increment(ctx context.Context, userID string, delta int64) (int64, error) {
	var newBalance int64

	err := inTx(ctx, r.db, func(tx *gorm.DB) error {
		result := tx.Model(&model.UserBalance{}).
			Where("user_id = ?", userID).
			UpdateColumns(map[string]any{
				"balance":    gorm.Expr("balance + ?", delta),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrUserBalanceNotFound
		}

		return tx.Model(&model.UserBalance{}).
			Select("balance").
			Where("user_id = ?", userID).
			Scan(&newBalance).Error
	})
	if err != nil {
		return 0, err
	}

	return newBalance, nil
}

func (r *userBalance) SetBalance(ctx context.Context, userID string, balance int64) error {
	result := GetTx(ctx, r.db).Model(&model.UserBalance{}).
		Where("user_id = ?", userID).
		UpdateColumns(map[string]any{
			"balance":    balance,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrUserBalanceNotFound
	}

	return nil
}

func (r *userBalance) CreateAdjustment(ctx context.Context, adj *model.BalanceAdjustment) error {
	return GetTx(ctx, r.db).Create(adj).Error
}

func (r *userBalance) SumAdjustments(ctx context.Context, userID string) (int64, error) {
	var sum int64

	err := GetTx(ctx, r.db).Model(&model.BalanceAdjustment{}).
		Select("COALESCE(SUM(delta), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error

	return sum, err
}
