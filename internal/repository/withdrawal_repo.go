package repository

import (
	"context"
	"errors"

	"ledgerpay/internal/model"

	"gorm.io/gorm"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(ctx context.Context, req *model.WithdrawalRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*model.WithdrawalRequest, error) {
	if tx == nil {
		tx = r.db
	}
	var req model.WithdrawalRequest
	err := tx.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// UpdateStatus 条件状态流转，语义同收款请求：终态不可再变更
func (r *WithdrawalRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id int64, fromStatus, toStatus string) error {
	if model.IsTerminalStatus(fromStatus) {
		return ErrRequestProcessed
	}

	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.WithdrawalRequest{}).
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

// ListPendingByUser 用户自己的待审批提现
func (r *WithdrawalRepository) ListPendingByUser(ctx context.Context, userID int64) ([]*model.WithdrawalRequest, error) {
	var requests []*model.WithdrawalRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.RequestStatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// ListPending 全部待审批提现（管理端）
func (r *WithdrawalRepository) ListPending(ctx context.Context) ([]*model.WithdrawalRequest, error) {
	var requests []*model.WithdrawalRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", model.RequestStatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// ListProcessed 已处理的提现（管理端）
func (r *WithdrawalRepository) ListProcessed(ctx context.Context, limit int) ([]*model.WithdrawalRequest, error) {
	var requests []*model.WithdrawalRequest
	err := r.db.WithContext(ctx).
		Where("status <> ?", model.RequestStatusPending).
		Order("created_at DESC").
		Limit(limit).
		Find(&requests).Error
	return requests, err
}
