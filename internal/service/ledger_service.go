package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"ledgerpay/internal/config"
	"ledgerpay/internal/infrastructure/lock"
	"ledgerpay/internal/model"
	"ledgerpay/internal/repository"
	"ledgerpay/pkg/idgen"
	"ledgerpay/pkg/metrics"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 乐观锁冲突时整个事务重做的次数上限
const maxApplyRetries = 3

// LedgerService 转账引擎
//
// 所有改变余额的操作都经过这里，一次操作在一个数据库事务内完成：
// 余额校验、双边余额写入、流水、利润记录、事务消息，要么全部生效要么全部回滚。
//
// 【三种调用形态】
//  1. 用户转账：source 付款，destination 收款，手续费加在付款方头上
//  2. 管理员入金：source 为空（资金进入系统），入账净额 = amount - fee
//  3. 提现审批：destination 为空（资金离开系统），付款方共扣 amount + fee
type LedgerService struct {
	db              *gorm.DB
	redisClient     *redis.Client
	cfg             *config.Config
	collector       *metrics.Collector
	userRepo        *repository.UserRepository
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
	outboxRepo      *repository.OutboxRepository
}

func NewLedgerService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, collector *metrics.Collector) *LedgerService {
	return &LedgerService{
		db:              db,
		redisClient:     redisClient,
		cfg:             cfg,
		collector:       collector,
		userRepo:        repository.NewUserRepository(db),
		accountRepo:     repository.NewAccountRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		outboxRepo:      repository.NewOutboxRepository(db),
	}
}

// transferParams 一次账务操作的完整参数
type transferParams struct {
	SourceAccountID *int64 // 付款账户，入金时为空
	DestAccountID   *int64 // 收款账户，提现时为空
	Amount          decimal.Decimal
	FeePercent      decimal.Decimal
	Type            string
	Note            string
	transactionNo   string // apply 内部生成，重试之间保持不变
}

// Transfer 用户间转账（按收款人用户名）
func (s *LedgerService) Transfer(ctx context.Context, fromUserID int64, toUsername string, amount decimal.Decimal, note string) (*model.Transaction, error) {
	fromAccount, err := s.accountRepo.GetOrCreate(ctx, fromUserID)
	if err != nil {
		return nil, fmt.Errorf("获取付款账户失败: %w", err)
	}

	toUser, err := s.userRepo.GetByUsername(ctx, toUsername)
	if err != nil {
		return nil, err
	}

	toAccount, err := s.accountRepo.GetOrCreate(ctx, toUser.ID)
	if err != nil {
		return nil, fmt.Errorf("获取收款账户失败: %w", err)
	}

	return s.apply(ctx, transferParams{
		SourceAccountID: &fromAccount.ID,
		DestAccountID:   &toAccount.ID,
		Amount:          amount,
		FeePercent:      s.cfg.Fee.TransferRate(),
		Type:            model.TransactionTypeTransfer,
		Note:            note,
	}, nil)
}

// TransferToAccount 扫码付款（按收款账户ID），拒绝自己转给自己
func (s *LedgerService) TransferToAccount(ctx context.Context, fromUserID int64, toAccountID int64, amount decimal.Decimal, note string) (*model.Transaction, error) {
	fromAccount, err := s.accountRepo.GetOrCreate(ctx, fromUserID)
	if err != nil {
		return nil, fmt.Errorf("获取付款账户失败: %w", err)
	}

	if fromAccount.ID == toAccountID {
		return nil, ErrSelfTransfer
	}

	toAccount, err := s.accountRepo.GetByID(ctx, nil, toAccountID)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, transferParams{
		SourceAccountID: &fromAccount.ID,
		DestAccountID:   &toAccount.ID,
		Amount:          amount,
		FeePercent:      s.cfg.Fee.TransferRate(),
		Type:            model.TransactionTypeTransfer,
		Note:            note,
	}, nil)
}

// Deposit 管理员入金
// 手续费从入金金额中扣除：入账净额 = amount - fee（与提现的费用模型不对称，历史行为，保持现状）
func (s *LedgerService) Deposit(ctx context.Context, username string, amount decimal.Decimal, note string) (*model.Transaction, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetOrCreate(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("获取账户失败: %w", err)
	}

	return s.apply(ctx, transferParams{
		DestAccountID: &account.ID,
		Amount:        amount,
		FeePercent:    s.cfg.Fee.DepositRate(),
		Type:          model.TransactionTypeDeposit,
		Note:          "管理员入金: " + note,
	}, nil)
}

// apply 执行一次账务操作
//
// inTx 为可选的附加步骤（如审批时的状态流转），与账务写入同事务提交。
// 乐观锁冲突时整个事务重做，重读账户状态后再次校验，
// 保证并发下余额校验和写入基于同一份数据
func (s *LedgerService) apply(ctx context.Context, p transferParams, inTx func(tx *gorm.DB) error) (*model.Transaction, error) {
	if !p.Amount.GreaterThan(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	p.transactionNo = idgen.GenerateTransactionNo()

	// 按付款账户加分布式锁，把热点账户的操作串行化，减少版本冲突。
	// 正确性不依赖这把锁：版本号写入保证并发安全，锁不可用时直接走重试
	if s.redisClient != nil && p.SourceAccountID != nil {
		acctLock := lock.NewAccountLock(s.redisClient, *p.SourceAccountID, p.transactionNo)
		if err := acctLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
			return nil, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
		}
		defer acctLock.Unlock(ctx)
	}

	start := time.Now()

	var trans *model.Transaction
	var err error
	for i := 0; i < maxApplyRetries; i++ {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			t, applyErr := s.applyIn(ctx, tx, p)
			if applyErr != nil {
				return applyErr
			}
			if inTx != nil {
				if hookErr := inTx(tx); hookErr != nil {
					return hookErr
				}
			}
			trans = t
			return nil
		})
		if errors.Is(err, repository.ErrOptimisticLock) {
			continue
		}
		break
	}

	if err != nil {
		if s.collector != nil {
			s.collector.RecordFailed(p.Type)
		}
		return nil, err
	}

	if s.collector != nil {
		s.collector.RecordApplied(p.Type, trans.Fee.InexactFloat64(), time.Since(start).Seconds())
	}

	log.Printf("账务操作完成: transactionNo=%s, type=%s, amount=%s, fee=%s",
		trans.TransactionNo, trans.Type, trans.Amount.String(), trans.Fee.String())

	return trans, nil
}

// applyIn 在给定事务内执行账务写入，六步全部成功或全部回滚：
// 算费、扣付款方、加收款方、写流水、写利润、写事务消息
func (s *LedgerService) applyIn(ctx context.Context, tx *gorm.DB, p transferParams) (*model.Transaction, error) {
	fee := FeeAmount(p.Amount, p.FeePercent)

	var fromAccountID, toAccountID *int64

	if p.SourceAccountID != nil {
		source, err := s.accountRepo.GetByID(ctx, tx, *p.SourceAccountID)
		if err != nil {
			return nil, err
		}

		// 余额校验必须算上手续费，且和写入在同一事务内
		total := p.Amount.Add(fee)
		if source.Balance.LessThan(total) {
			return nil, ErrInsufficientFunds
		}

		if err := s.accountRepo.UpdateBalance(ctx, tx, source.ID, source.Balance.Sub(total), source.Version); err != nil {
			return nil, err
		}
		fromAccountID = &source.ID
	}

	if p.DestAccountID != nil {
		dest, err := s.accountRepo.GetByID(ctx, tx, *p.DestAccountID)
		if err != nil {
			return nil, err
		}

		credit := p.Amount
		if p.SourceAccountID == nil && p.Type == model.TransactionTypeDeposit {
			// 入金时手续费从入金金额里扣，收款方拿到净额
			credit = p.Amount.Sub(fee)
		}

		if err := s.accountRepo.UpdateBalance(ctx, tx, dest.ID, dest.Balance.Add(credit), dest.Version); err != nil {
			return nil, err
		}
		toAccountID = &dest.ID
	}

	trans := &model.Transaction{
		TransactionNo: p.transactionNo,
		FromAccountID: fromAccountID,
		ToAccountID:   toAccountID,
		Amount:        p.Amount,
		Fee:           fee,
		Type:          p.Type,
		Note:          p.Note,
	}
	if err := s.transactionRepo.Create(ctx, tx, trans); err != nil {
		return nil, fmt.Errorf("记录流水失败: %w", err)
	}

	profit := &model.ProfitRecord{
		TransactionID: trans.ID,
		Amount:        fee,
	}
	if err := s.transactionRepo.CreateProfitRecord(ctx, tx, profit); err != nil {
		return nil, fmt.Errorf("记录利润失败: %w", err)
	}

	if err := s.writeOutboxEvent(ctx, tx, trans); err != nil {
		return nil, fmt.Errorf("写入事务消息失败: %w", err)
	}

	return trans, nil
}

// writeOutboxEvent 账务事件随业务事务落库，由后台任务投递
func (s *LedgerService) writeOutboxEvent(ctx context.Context, tx *gorm.DB, trans *model.Transaction) error {
	payload := map[string]interface{}{
		"transaction_no":  trans.TransactionNo,
		"type":            trans.Type,
		"from_account_id": trans.FromAccountID,
		"to_account_id":   trans.ToAccountID,
		"amount":          trans.Amount.String(),
		"fee":             trans.Fee.String(),
		"note":            trans.Note,
		"created_at":      time.Now().Format(time.RFC3339),
	}
	payloadBytes, _ := json.Marshal(payload)

	msg := &model.OutboxMessage{
		MessageKey: trans.TransactionNo,
		Topic:      s.cfg.Kafka.Topic.LedgerEvents,
		Payload:    string(payloadBytes),
		Status:     model.OutboxStatusPending,
	}
	return s.outboxRepo.Create(ctx, tx, msg)
}
