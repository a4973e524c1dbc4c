package service

import (
	"context"
	"fmt"
	"time"

	"ledgerpay/internal/config"
	"ledgerpay/internal/model"
	"ledgerpay/internal/repository"

	"gorm.io/gorm"
)

type AccountService struct {
	db              *gorm.DB
	cfg             *config.Config
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
	withdrawalRepo  *repository.WithdrawalRepository
}

func NewAccountService(db *gorm.DB, cfg *config.Config) *AccountService {
	return &AccountService{
		db:              db,
		cfg:             cfg,
		accountRepo:     repository.NewAccountRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		withdrawalRepo:  repository.NewWithdrawalRepository(db),
	}
}

// GetOrCreateAccount 首次访问时懒创建账户，余额从0开始
func (s *AccountService) GetOrCreateAccount(ctx context.Context, userID int64) (*model.Account, error) {
	return s.accountRepo.GetOrCreate(ctx, userID)
}

// GetQRPayload 收款码内容，首次访问时生成并缓存到账户上
func (s *AccountService) GetQRPayload(ctx context.Context, userID int64) (string, error) {
	account, err := s.accountRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return "", err
	}

	if account.QRPayload != "" {
		return account.QRPayload, nil
	}

	payload := fmt.Sprintf("%s/account/%d/pay", s.cfg.Server.QRBaseURL, account.ID)
	if err := s.accountRepo.SaveQRPayload(ctx, account.ID, payload); err != nil {
		return "", err
	}
	return payload, nil
}

// DashboardData 用户看板数据
type DashboardData struct {
	Account            *model.Account             `json:"account"`
	TodayTransactions  []*model.Transaction       `json:"today_transactions"`
	PendingWithdrawals []*model.WithdrawalRequest `json:"pending_withdrawals"`
}

// Dashboard 用户看板：余额、当日流水、待审批提现
func (s *AccountService) Dashboard(ctx context.Context, userID int64) (*DashboardData, error) {
	account, err := s.accountRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	txs, err := s.transactionRepo.ListByAccountSince(ctx, account.ID, startOfToday(), 10)
	if err != nil {
		return nil, err
	}

	pending, err := s.withdrawalRepo.ListPendingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &DashboardData{
		Account:            account,
		TodayTransactions:  txs,
		PendingWithdrawals: pending,
	}, nil
}

// ListTransactions 账户的交易历史
func (s *AccountService) ListTransactions(ctx context.Context, userID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	account, err := s.accountRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.transactionRepo.ListByAccount(ctx, account.ID, page, pageSize)
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
