package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"ledgerpay/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAdminCreateUser(t *testing.T) {
	db := newTestDB(t)
	admin := NewAdminService(db, testConfig())
	ctx := context.Background()

	user, err := admin.CreateUser(ctx, "erin", "erin@example.com")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.False(t, user.IsAdmin)

	// 用户名唯一
	_, err = admin.CreateUser(ctx, "erin", "")
	require.ErrorIs(t, err, repository.ErrUsernameTaken)

	users, err := admin.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestAdminDeleteUser(t *testing.T) {
	db := newTestDB(t)
	admin := NewAdminService(db, testConfig())
	ctx := context.Background()

	normal, _ := seedUser(t, db, "erin", decimal.Zero, false)
	root, _ := seedUser(t, db, "root", decimal.Zero, true)

	require.NoError(t, admin.DeleteUser(ctx, normal.ID))
	require.ErrorIs(t, admin.DeleteUser(ctx, normal.ID), repository.ErrUserNotFound)

	// 管理员账号不可删除
	require.ErrorIs(t, admin.DeleteUser(ctx, root.ID), ErrAdminUndeletable)
}

func TestAdminDashboard(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	admin := NewAdminService(db, testConfig())
	ctx := context.Background()

	userA, _ := seedUser(t, db, "alice", decimal.RequireFromString("100.00"), false)
	seedUser(t, db, "bob", decimal.RequireFromString("50.00"), false)

	_, err := ledger.Transfer(ctx, userA.ID, "bob", decimal.RequireFromString("50.00"), "")
	require.NoError(t, err)

	data, err := admin.Dashboard(ctx)
	require.NoError(t, err)

	requireDecimalEqual(t, "149.00", data.TotalBalance)
	requireDecimalEqual(t, "1.00", data.TodayProfit)
	require.Len(t, data.RecentTransactions, 1)
	require.Equal(t, 2.0, data.TransferFeePercent)
}

func TestAdminProfitReportCSV(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	admin := NewAdminService(db, testConfig())
	ctx := context.Background()

	userA, _ := seedUser(t, db, "alice", decimal.RequireFromString("100.00"), false)
	seedUser(t, db, "bob", decimal.Zero, false)

	trans, err := ledger.Transfer(ctx, userA.ID, "bob", decimal.RequireFromString("50.00"), "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, admin.WriteProfitReportCSV(ctx, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "date,transaction_no,type,profit", lines[0])
	require.Contains(t, lines[1], trans.TransactionNo)
	require.Contains(t, lines[1], "1.00")
}
