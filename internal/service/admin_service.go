package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"ledgerpay/internal/config"
	"ledgerpay/internal/model"
	"ledgerpay/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AdminService 管理端操作：用户管理、看板汇总、利润报表
// 入金和提现审批分别委托转账引擎和提现工作流，这里不直接碰余额
type AdminService struct {
	db              *gorm.DB
	cfg             *config.Config
	userRepo        *repository.UserRepository
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
	withdrawalRepo  *repository.WithdrawalRepository
}

func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		db:              db,
		cfg:             cfg,
		userRepo:        repository.NewUserRepository(db),
		accountRepo:     repository.NewAccountRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		withdrawalRepo:  repository.NewWithdrawalRepository(db),
	}
}

// CreateUser 创建用户，用户名唯一
func (s *AdminService) CreateUser(ctx context.Context, username, email string) (*model.User, error) {
	if username == "" {
		return nil, fmt.Errorf("用户名不能为空")
	}
	user := &model.User{
		Username: username,
		Email:    email,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.List(ctx)
}

// DeleteUser 删除用户，管理员账号不可删除
func (s *AdminService) DeleteUser(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return ErrAdminUndeletable
	}
	return s.userRepo.Delete(ctx, userID)
}

// AdminDashboardData 管理端看板数据
type AdminDashboardData struct {
	TotalBalance       decimal.Decimal            `json:"total_balance"`
	TodayProfit        decimal.Decimal            `json:"today_profit"`
	RecentTransactions []*model.Transaction       `json:"recent_transactions"`
	PendingWithdrawals []*model.WithdrawalRequest `json:"pending_withdrawals"`
	TransferFeePercent float64                    `json:"transfer_fee_percent"`
	DepositFeePercent  float64                    `json:"deposit_fee_percent"`
	WithdrawFeePercent float64                    `json:"withdraw_fee_percent"`
}

// Dashboard 管理端看板：全站余额、当日利润、最近流水、待审批提现、费率
func (s *AdminService) Dashboard(ctx context.Context) (*AdminDashboardData, error) {
	totalBalance, err := s.accountRepo.SumBalances(ctx)
	if err != nil {
		return nil, err
	}

	todayProfit, err := s.transactionRepo.SumProfitSince(ctx, startOfToday())
	if err != nil {
		return nil, err
	}

	recent, err := s.transactionRepo.ListRecent(ctx, 200)
	if err != nil {
		return nil, err
	}

	pending, err := s.withdrawalRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	return &AdminDashboardData{
		TotalBalance:       totalBalance,
		TodayProfit:        todayProfit,
		RecentTransactions: recent,
		PendingWithdrawals: pending,
		TransferFeePercent: s.cfg.Fee.TransferPercent,
		DepositFeePercent:  s.cfg.Fee.DepositPercent,
		WithdrawFeePercent: s.cfg.Fee.WithdrawPercent,
	}, nil
}

// WriteProfitReportCSV 导出利润明细报表
func (s *AdminService) WriteProfitReportCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.transactionRepo.ProfitReport(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "transaction_no", "type", "profit"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.CreatedAt.Format(time.RFC3339),
			row.TransactionNo,
			row.Type,
			row.Amount.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
