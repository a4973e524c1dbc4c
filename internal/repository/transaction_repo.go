package repository

import (
	"context"
	"errors"
	"time"

	"ledgerpay/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *gorm.DB, trans *model.Transaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(trans).Error
}

// CreateProfitRecord 创建利润记录
// 必须和对应的交易流水处在同一事务内，金额恒等于流水的手续费
func (r *TransactionRepository) CreateProfitRecord(ctx context.Context, tx *gorm.DB, record *model.ProfitRecord) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(record).Error
}

func (r *TransactionRepository) GetByTransactionNo(ctx context.Context, transactionNo string) (*model.Transaction, error) {
	var trans model.Transaction
	err := r.db.WithContext(ctx).Where("transaction_no = ?", transactionNo).First(&trans).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trans, nil
}

// ListByAccount 账户视角的交易历史（出账+入账）
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	var transactions []*model.Transaction
	var total int64

	query := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("from_account_id = ? OR to_account_id = ?", accountID, accountID)

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&transactions).Error

	return transactions, total, err
}

// ListRecent 最近的交易（管理端看板用）
func (r *TransactionRepository) ListRecent(ctx context.Context, limit int) ([]*model.Transaction, error) {
	var transactions []*model.Transaction
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}

// ListByAccountSince 某时刻之后账户相关的交易（用户看板展示当日流水）
func (r *TransactionRepository) ListByAccountSince(ctx context.Context, accountID int64, since time.Time, limit int) ([]*model.Transaction, error) {
	var transactions []*model.Transaction
	err := r.db.WithContext(ctx).
		Where("(from_account_id = ? OR to_account_id = ?) AND created_at >= ?", accountID, accountID, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}

// SumProfitSince 某时刻之后的利润合计
func (r *TransactionRepository) SumProfitSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&model.ProfitRecord{}).
		Where("created_at >= ?", since).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumProfit 全部利润合计
func (r *TransactionRepository) SumProfit(ctx context.Context) (decimal.Decimal, error) {
	return r.SumProfitSince(ctx, time.Time{})
}

// ProfitReportRow 利润报表行
type ProfitReportRow struct {
	CreatedAt     time.Time
	TransactionNo string
	Type          string
	Amount        decimal.Decimal
}

// ProfitReport 利润明细（CSV 导出用），按时间正序
func (r *TransactionRepository) ProfitReport(ctx context.Context) ([]ProfitReportRow, error) {
	var rows []ProfitReportRow
	err := r.db.WithContext(ctx).
		Model(&model.ProfitRecord{}).
		Select("profit_record.created_at, ledger_transaction.transaction_no, ledger_transaction.type, profit_record.amount").
		Joins("JOIN ledger_transaction ON ledger_transaction.id = profit_record.transaction_id").
		Order("profit_record.created_at ASC").
		Scan(&rows).Error
	return rows, err
}
