package service

import (
	"context"
	"fmt"
	"testing"

	"ledgerpay/internal/config"
	"ledgerpay/internal/infrastructure/database"
	"ledgerpay/internal/model"
	"ledgerpay/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 每个测试一个独立的内存库，复用生产环境的表结构迁移
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// testConfig 测试费率与规格示例保持一致：转账2%、入金5%、提现3%
func testConfig() *config.Config {
	return &config.Config{
		Fee: config.FeeConfig{
			TransferPercent: 2.0,
			DepositPercent:  5.0,
			WithdrawPercent: 3.0,
		},
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{LedgerEvents: "ledger_events"},
		},
	}
}

// newLedger 测试用转账引擎：不挂 Redis 锁和指标采集，正确性由版本号保证
func newLedger(t *testing.T, db *gorm.DB) *LedgerService {
	t.Helper()
	return NewLedgerService(db, nil, testConfig(), nil)
}

// seedUser 创建用户和带初始余额的账户
func seedUser(t *testing.T, db *gorm.DB, username string, balance decimal.Decimal, isAdmin bool) (*model.User, *model.Account) {
	t.Helper()
	ctx := context.Background()

	user := &model.User{Username: username, IsAdmin: isAdmin}
	require.NoError(t, repository.NewUserRepository(db).Create(ctx, user))

	account := &model.Account{UserID: user.ID, Balance: balance}
	require.NoError(t, repository.NewAccountRepository(db).Create(ctx, account))

	return user, account
}

// accountBalance 读取账户最新余额
func accountBalance(t *testing.T, db *gorm.DB, accountID int64) decimal.Decimal {
	t.Helper()
	account, err := repository.NewAccountRepository(db).GetByID(context.Background(), nil, accountID)
	require.NoError(t, err)
	return account.Balance
}

// requireDecimalEqual 金额断言
func requireDecimalEqual(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	require.True(t, actual.Equal(decimal.RequireFromString(expected)),
		"期望金额 %s，实际 %s", expected, actual.String())
}
