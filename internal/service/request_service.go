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

// MoneyRequestService 收款请求工作流
//
// 状态机：PENDING -> APPROVED / REJECTED，终态不再流转。
// 审批在付款方（target）手里，通过后委托转账引擎完成实际划账，
// 转账和状态流转在同一事务内，转账失败时请求保持 PENDING
type MoneyRequestService struct {
	db          *gorm.DB
	cfg         *config.Config
	ledger      *LedgerService
	accountRepo *repository.AccountRepository
	requestRepo *repository.MoneyRequestRepository
}

func NewMoneyRequestService(db *gorm.DB, cfg *config.Config, ledger *LedgerService) *MoneyRequestService {
	return &MoneyRequestService{
		db:          db,
		cfg:         cfg,
		ledger:      ledger,
		accountRepo: repository.NewAccountRepository(db),
		requestRepo: repository.NewMoneyRequestRepository(db),
	}
}

// Create 创建收款请求：requester 希望从 target 处收到 amount
// 创建本身不动任何余额
func (s *MoneyRequestService) Create(ctx context.Context, requesterAccountID, targetAccountID int64, amount decimal.Decimal, note string) (*model.MoneyRequest, error) {
	if !amount.GreaterThan(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if requesterAccountID == targetAccountID {
		return nil, ErrSelfTransfer
	}

	if _, err := s.accountRepo.GetByID(ctx, nil, targetAccountID); err != nil {
		return nil, err
	}

	req := &model.MoneyRequest{
		RequestNo:          idgen.GenerateRequestNo(),
		RequesterAccountID: requesterAccountID,
		TargetAccountID:    targetAccountID,
		Amount:             amount,
		Status:             model.RequestStatusPending,
		Note:               note,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("创建收款请求失败: %w", err)
	}
	return req, nil
}

// Approve 付款方审批通过
//
// 只有 target 本人可以审批（ErrForbidden）。
// 已处理的请求返回 ErrRequestProcessed，属于幂等信号而非失败。
// 转账引擎失败（如余额不足）时整个事务回滚，请求保持 PENDING
func (s *MoneyRequestService) Approve(ctx context.Context, requestID, actingUserID int64) (*model.Transaction, error) {
	req, err := s.requestRepo.GetByID(ctx, nil, requestID)
	if err != nil {
		return nil, err
	}

	actingAccount, err := s.accountRepo.GetByUserID(ctx, actingUserID)
	if err != nil {
		return nil, err
	}
	if actingAccount.ID != req.TargetAccountID {
		return nil, ErrForbidden
	}

	if req.Status != model.RequestStatusPending {
		return nil, repository.ErrRequestProcessed
	}

	return s.ledger.apply(ctx, transferParams{
		SourceAccountID: &req.TargetAccountID,
		DestAccountID:   &req.RequesterAccountID,
		Amount:          req.Amount,
		FeePercent:      s.cfg.Fee.TransferRate(),
		Type:            model.TransactionTypeTransfer,
		Note:            fmt.Sprintf("审批收款请求 %s", req.RequestNo),
	}, func(tx *gorm.DB) error {
		return s.requestRepo.UpdateStatus(ctx, tx, req.ID, model.RequestStatusPending, model.RequestStatusApproved)
	})
}

// Reject 付款方拒绝，只有 target 本人可以操作
// 非 PENDING 状态下是无副作用的幂等信号
func (s *MoneyRequestService) Reject(ctx context.Context, requestID, actingUserID int64) error {
	req, err := s.requestRepo.GetByID(ctx, nil, requestID)
	if err != nil {
		return err
	}

	actingAccount, err := s.accountRepo.GetByUserID(ctx, actingUserID)
	if err != nil {
		return err
	}
	if actingAccount.ID != req.TargetAccountID {
		return ErrForbidden
	}

	return s.requestRepo.UpdateStatus(ctx, nil, req.ID, model.RequestStatusPending, model.RequestStatusRejected)
}

// RequestListData 请求列表（双向）
type RequestListData struct {
	Incoming []*model.MoneyRequest `json:"incoming"` // 待我付款
	Outgoing []*model.MoneyRequest `json:"outgoing"` // 我发起的
}

func (s *MoneyRequestService) List(ctx context.Context, userID int64) (*RequestListData, error) {
	account, err := s.accountRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	incoming, err := s.requestRepo.ListIncoming(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	outgoing, err := s.requestRepo.ListOutgoing(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return &RequestListData{Incoming: incoming, Outgoing: outgoing}, nil
}
