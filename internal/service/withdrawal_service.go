package service

import (
	"context"
	"fmt"

	"ledgerpay/internal/config"
	"ledgerpay/internal/model"
	"ledgerpay/internal/repository"
	"ledgerpay/pkg/idgen"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawalService 提现工作流
//
// 状态机与收款请求相同，但审批权在管理员（路由层统一校验角色）。
// 用户提交申请只记录意图，余额扣减发生在审批通过时：
// 共扣 amount + fee，手续费加在提现金额之上
type WithdrawalService struct {
	db             *gorm.DB
	cfg            *config.Config
	ledger         *LedgerService
	accountRepo    *repository.AccountRepository
	withdrawalRepo *repository.WithdrawalRepository
}

func NewWithdrawalService(db *gorm.DB, cfg *config.Config, ledger *LedgerService) *WithdrawalService {
	return &WithdrawalService{
		db:             db,
		cfg:            cfg,
		ledger:         ledger,
		accountRepo:    repository.NewAccountRepository(db),
		withdrawalRepo: repository.NewWithdrawalRepository(db),
	}
}

// Create 提交提现申请，不做任何余额变动
func (s *WithdrawalService) Create(ctx context.Context, userID int64, amount decimal.Decimal, note string) (*model.WithdrawalRequest, error) {
	if !amount.GreaterThan(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	if _, err := s.accountRepo.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	req := &model.WithdrawalRequest{
		RequestNo: idgen.GenerateWithdrawalNo(),
		UserID:    userID,
		Amount:    amount,
		Status:    model.RequestStatusPending,
		Note:      note,
	}
	if err := s.withdrawalRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("创建提现申请失败: %w", err)
	}
	return req, nil
}

// Approve 管理员审批通过，触发提现扣款
// 余额不足时事务回滚，申请保持 PENDING；已处理的申请返回幂等信号
func (s *WithdrawalService) Approve(ctx context.Context, requestID int64) (*model.Transaction, error) {
	req, err := s.withdrawalRepo.GetByID(ctx, nil, requestID)
	if err != nil {
		return nil, err
	}

	if req.Status != model.RequestStatusPending {
		return nil, repository.ErrRequestProcessed
	}

	account, err := s.accountRepo.GetOrCreate(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	return s.ledger.apply(ctx, transferParams{
		SourceAccountID: &account.ID,
		Amount:          req.Amount,
		FeePercent:      s.cfg.Fee.WithdrawRate(),
		Type:            model.TransactionTypeWithdraw,
		Note:            fmt.Sprintf("审批提现申请 %s", req.RequestNo),
	}, func(tx *gorm.DB) error {
		return s.withdrawalRepo.UpdateStatus(ctx, tx, req.ID, model.RequestStatusPending, model.RequestStatusApproved)
	})
}

// Reject 管理员拒绝，非 PENDING 时为无副作用的幂等信号
func (s *WithdrawalService) Reject(ctx context.Context, requestID int64) error {
	req, err := s.withdrawalRepo.GetByID(ctx, nil, requestID)
	if err != nil {
		return err
	}
	return s.withdrawalRepo.UpdateStatus(ctx, nil, req.ID, model.RequestStatusPending, model.RequestStatusRejected)
}

func (s *WithdrawalService) ListPendingByUser(ctx context.Context, userID int64) ([]*model.WithdrawalRequest, error) {
	return s.withdrawalRepo.ListPendingByUser(ctx, userID)
}

// WithdrawalListData 管理端提现列表
type WithdrawalListData struct {
	Pending   []*model.WithdrawalRequest `json:"pending"`
	Processed []*model.WithdrawalRequest `json:"processed"`
}

func (s *WithdrawalService) ListForAdmin(ctx context.Context) (*WithdrawalListData, error) {
	pending, err := s.withdrawalRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	processed, err := s.withdrawalRepo.ListProcessed(ctx, 200)
	if err != nil {
		return nil, err
	}
	return &WithdrawalListData{Pending: pending, Processed: processed}, nil
}
