package service

import (
	"context"
	"testing"

	"ledgerpay/internal/model"
	"ledgerpay/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTransferSuccess(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	ctx := context.Background()

	userA, accountA := seedUser(t, db, "alice", decimal.RequireFromString("100.00"), false)
	_, accountB := seedUser(t, db, "bob", decimal.RequireFromString("10.00"), false)

	trans, err := ledger.Transfer(ctx, userA.ID, "bob", decimal.RequireFromString("50.00"), "晚饭")
	require.NoError(t, err)

	// 付款方扣 amount + fee，收款方只加 amount
	requireDecimalEqual(t, "49.00", accountBalance(t, db, accountA.ID))
	requireDecimalEqual(t, "60.00", accountBalance(t, db, accountB.ID))

	require.Equal(t, model.TransactionTypeTransfer, trans.Type)
	requireDecimalEqual(t, "50.00", trans.Amount)
	requireDecimalEqual(t, "1.00", trans.Fee)
	require.NotNil(t, trans.FromAccountID)
	require.NotNil(t, trans.ToAccountID)
	require.Equal(t, accountA.ID, *trans.FromAccountID)
	require.Equal(t, accountB.ID, *trans.ToAccountID)

	// 利润记录与流水一对一，金额等于手续费
	var profit model.ProfitRecord
	require.NoError(t, db.Where("transaction_id = ?", trans.ID).First(&profit).Error)
	requireDecimalEqual(t, "1.00", profit.Amount)

	// 账务事件随事务落库
	var outbox model.OutboxMessage
	require.NoError(t, db.Where("message_key = ?", trans.TransactionNo).First(&outbox).Error)
	require.Equal(t, model.OutboxStatusPending, outbox.Status)
}

func TestTransferInsufficientFunds(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	ctx := context.Background()

	userA, accountA := seedUser(t, db, "alice", decimal.RequireFromString("40.00"), false)
	_, accountB := seedUser(t, db, "bob", decimal.Zero, false)

	// 40.00 < 50.00 + 1.00，余额校验必须算上手续费
	_, err := ledger.Transfer(ctx, userA.ID, "bob", decimal.RequireFromString("50.00"), "")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// 失败不留任何痕迹：余额不变，无流水、无利润、无事件
	requireDecimalEqual(t, "40.00", accountBalance(t, db, accountA.ID))
	requireDecimalEqual(t, "0.00", accountBalance(t, db, accountB.ID))

	var txCount, profitCount, outboxCount int64
	require.NoError(t, db.Model(&model.Transaction{}).Count(&txCount).Error)
	require.NoError(t, db.Model(&model.ProfitRecord{}).Count(&profitCount).Error)
	require.NoError(t, db.Model(&model.OutboxMessage{}).Count(&outboxCount).Error)
	require.Zero(t, txCount)
	require.Zero(t, profitCount)
	require.Zero(t, outboxCount)
}

func TestTransferExactTotal(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	ctx := context.Background()

	// 余额恰好等于 amount + fee 时允许通过，结果为0
	userA, accountA := seedUser(t, db, "alice", decimal.RequireFromString("51.00"), false)
	seedUser(t, db, "bob", decimal.Zero, false)

	_, err := ledger.Transfer(ctx, userA.ID, "bob", decimal.RequireFromString("50.00"), "")
	require.NoError(t, err)
	requireDecimalEqual(t, "0.00", accountBalance(t, db, accountA.ID))
}

func TestTransferInvalidAmount(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	ctx := context.Background()

	userA, _ := seedUser(t, db, "alice", decimal.RequireFromString("100.00"), false)
	seedUser(t, db, "bob", decimal.Zero, false)

	_, err := ledger.Transfer(ctx, userA.ID, "bob", decimal.Zero, "")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ledger.Transfer(ctx, userA.ID, "bob", decimal.RequireFromString("-1.00"), "")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestTransferUserNotFound(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	ctx := context.Background()

	userA, _ := seedUser(t, db, "alice", decimal.RequireFromString("100.00"), false)

	_, err := ledger.Transfer(ctx, userA.ID, "nobody", decimal.RequireFromString("10.00"), "")
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestTransferToAccountRejectsSelf(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	ctx := context.Background()

	userA, accountA := seedUser(t, db, "alice", decimal.RequireFromString("100.00"), false)

	_, err := ledger.TransferToAccount(ctx, userA.ID, accountA.ID, decimal.RequireFromString("10.00"), "")
	require.ErrorIs(t, err, ErrSelfTransfer)
	requireDecimalEqual(t, "100.00", accountBalance(t, db, accountA.ID))
}

func TestDepositNetCredit(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	ctx := context.Background()

	_, accountC := seedUser(t, db, "carol", decimal.Zero, false)

	// 入金手续费从入金金额中扣除：到账 = 100 - 5
	trans, err := ledger.Deposit(ctx, "carol", decimal.RequireFromString("100.00"), "充值")
	require.NoError(t, err)

	requireDecimalEqual(t, "95.00", accountBalance(t, db, accountC.ID))
	require.Equal(t, model.TransactionTypeDeposit, trans.Type)
	requireDecimalEqual(t, "100.00", trans.Amount)
	requireDecimalEqual(t, "5.00", trans.Fee)
	require.Nil(t, trans.FromAccountID)
	require.NotNil(t, trans.ToAccountID)

	var profit model.ProfitRecord
	require.NoError(t, db.Where("transaction_id = ?", trans.ID).First(&profit).Error)
	requireDecimalEqual(t, "5.00", profit.Amount)
}

func TestDepositUserNotFound(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)

	_, err := ledger.Deposit(context.Background(), "nobody", decimal.RequireFromString("10.00"), "")
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}

// TestMoneyConservation 资金守恒：
// 全部余额 + 全部利润只会因入金增加、因提现减少，转账不会创造或销毁资金
func TestMoneyConservation(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	cfg := testConfig()
	ctx := context.Background()

	userA, _ := seedUser(t, db, "alice", decimal.RequireFromString("100.00"), false)
	seedUser(t, db, "bob", decimal.RequireFromString("50.00"), false)
	seedUser(t, db, "carol", decimal.Zero, false)

	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	systemTotal := func() decimal.Decimal {
		balances, err := accountRepo.SumBalances(ctx)
		require.NoError(t, err)
		profit, err := transactionRepo.SumProfit(ctx)
		require.NoError(t, err)
		return balances.Add(profit)
	}

	total := systemTotal()
	requireDecimalEqual(t, "150.00", total)

	// 转账是系统内部的资金移动，总量不变
	_, err := ledger.Transfer(ctx, userA.ID, "bob", decimal.RequireFromString("30.00"), "")
	require.NoError(t, err)
	requireDecimalEqual(t, "150.00", systemTotal())

	// 入金让总量增加 amount（净额进余额，手续费进利润）
	_, err = ledger.Deposit(ctx, "carol", decimal.RequireFromString("100.00"), "")
	require.NoError(t, err)
	requireDecimalEqual(t, "250.00", systemTotal())

	// 提现让总量减少 amount（余额扣 amount+fee，手续费转入利润）
	withdrawals := NewWithdrawalService(db, cfg, ledger)
	wr, err := withdrawals.Create(ctx, userA.ID, decimal.RequireFromString("30.00"), "")
	require.NoError(t, err)
	_, err = withdrawals.Approve(ctx, wr.ID)
	require.NoError(t, err)
	requireDecimalEqual(t, "220.00", systemTotal())
}

// TestSequentialDoubleSpend 同一账户连续两笔，第二笔基于第一笔之后的余额校验
func TestSequentialDoubleSpend(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	ctx := context.Background()

	userA, accountA := seedUser(t, db, "alice", decimal.RequireFromString("100.00"), false)
	seedUser(t, db, "bob", decimal.Zero, false)

	_, err := ledger.Transfer(ctx, userA.ID, "bob", decimal.RequireFromString("60.00"), "")
	require.NoError(t, err)

	// 剩余 38.80，不够再转 60.00
	_, err = ledger.Transfer(ctx, userA.ID, "bob", decimal.RequireFromString("60.00"), "")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	requireDecimalEqual(t, "38.80", accountBalance(t, db, accountA.ID))
}
