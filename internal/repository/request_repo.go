package repository

import (
	"context"
	"errors"

	"ledgerpay/internal/model"

	"gorm.io/gorm"
)

var (
	ErrRequestNotFound  = errors.New("请求不存在")
	ErrRequestProcessed = errors.New("请求已处理")
)

type MoneyRequestRepository struct {
	db *gorm.DB
}

func NewMoneyRequestRepository(db *gorm.DB) *MoneyRequestRepository {
	return &MoneyRequestRepository{db: db}
}

func (r *MoneyRequestRepository) Create(ctx context.Context, req *model.MoneyRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *MoneyRequestRepository) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*model.MoneyRequest, error) {
	if tx == nil {
		tx = r.db
	}
	var req model.MoneyRequest
	err := tx.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// UpdateStatus 条件状态流转
//
// 【关键点】WHERE 带上旧状态，终态记录不会被再次改写。
// RowsAffected 为 0 说明请求已被处理过（或被并发处理），返回幂等信号
func (r *MoneyRequestRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id int64, fromStatus, toStatus string) error {
	if model.IsTerminalStatus(fromStatus) {
		return ErrRequestProcessed
	}

	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.MoneyRequest{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Update("status", toStatus)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrRequestProcessed
	}

	return nil
}

// ListIncoming 待我付款的请求（我是 target）
func (r *MoneyRequestRepository) ListIncoming(ctx context.Context, targetAccountID int64) ([]*model.MoneyRequest, error) {
	var requests []*model.MoneyRequest
	err := r.db.WithContext(ctx).
		Where("target_account_id = ?", targetAccountID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// ListOutgoing 我发起的收款请求（我是 requester）
func (r *MoneyRequestRepository) ListOutgoing(ctx context.Context, requesterAccountID int64) ([]*model.MoneyRequest, error) {
	var requests []*model.MoneyRequest
	err := r.db.WithContext(ctx).
		Where("requester_account_id = ?", requesterAccountID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}
