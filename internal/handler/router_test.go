package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"ledgerpay/internal/config"
	"ledgerpay/internal/infrastructure/database"
	"ledgerpay/internal/model"
	"ledgerpay/internal/repository"
	"ledgerpay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
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

	cfg := &config.Config{
		Server: config.ServerConfig{QRBaseURL: "https://pay.example.com"},
		Fee: config.FeeConfig{
			TransferPercent: 2.0,
			DepositPercent:  5.0,
			WithdrawPercent: 3.0,
		},
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{LedgerEvents: "ledger_events"},
		},
	}

	return SetupRouter(db, nil, cfg, nil), db
}

func seedUser(t *testing.T, db *gorm.DB, username string, balance decimal.Decimal, isAdmin bool) (*model.User, *model.Account) {
	t.Helper()
	ctx := context.Background()

	user := &model.User{Username: username, IsAdmin: isAdmin}
	require.NoError(t, repository.NewUserRepository(db).Create(ctx, user))

	account := &model.Account{UserID: user.ID, Balance: balance}
	require.NoError(t, repository.NewAccountRepository(db).Create(ctx, account))

	return user, account
}

func doRequest(router *gin.Engine, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID > 0 {
		req.Header.Set("X-User-ID", strconv.FormatInt(userID, 10))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) *response.Response {
	t.Helper()
	resp := &response.Response{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestIdentityRequired(t *testing.T) {
	router, _ := newTestRouter(t)

	// 不带 X-User-ID 头的业务请求一律拒绝
	w := doRequest(router, http.MethodGet, "/api/v1/account", 0, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetAccountCreatesOnFirstAccess(t *testing.T) {
	router, db := newTestRouter(t)
	user, _ := seedUser(t, db, "alice", decimal.Zero, false)

	w := doRequest(router, http.MethodGet, "/api/v1/account", user.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)
}

func TestAdminRouteForbiddenForRegularUser(t *testing.T) {
	router, db := newTestRouter(t)
	user, _ := seedUser(t, db, "bob", decimal.Zero, false)

	w := doRequest(router, http.MethodGet, "/api/v1/admin/dashboard", user.ID, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTransferEndToEnd(t *testing.T) {
	router, db := newTestRouter(t)
	alice, aliceAccount := seedUser(t, db, "alice", decimal.RequireFromString("100.00"), false)
	_, bobAccount := seedUser(t, db, "bob", decimal.Zero, false)

	w := doRequest(router, http.MethodPost, "/api/v1/transfer", alice.ID, gin.H{
		"to_username": "bob",
		"amount":      "50",
		"note":        "lunch",
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	repo := repository.NewAccountRepository(db)
	from, err := repo.GetByID(context.Background(), nil, aliceAccount.ID)
	require.NoError(t, err)
	to, err := repo.GetByID(context.Background(), nil, bobAccount.ID)
	require.NoError(t, err)

	// 50 本金 + 1.00 手续费（2%）
	require.True(t, from.Balance.Equal(decimal.RequireFromString("49.00")), "实际 %s", from.Balance)
	require.True(t, to.Balance.Equal(decimal.RequireFromString("50.00")), "实际 %s", to.Balance)
}

func TestTransferInsufficientFundsBusinessCode(t *testing.T) {
	router, db := newTestRouter(t)
	alice, _ := seedUser(t, db, "alice", decimal.RequireFromString("10.00"), false)
	seedUser(t, db, "bob", decimal.Zero, false)

	w := doRequest(router, http.MethodPost, "/api/v1/transfer", alice.ID, gin.H{
		"to_username": "bob",
		"amount":      "50",
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	require.Equal(t, response.CodeInsufficientFunds, resp.Code)
}

func TestAdminDepositEndToEnd(t *testing.T) {
	router, db := newTestRouter(t)
	admin, _ := seedUser(t, db, "admin", decimal.Zero, true)
	_, account := seedUser(t, db, "carol", decimal.Zero, false)

	w := doRequest(router, http.MethodPost, "/api/v1/admin/deposit", admin.ID, gin.H{
		"username": "carol",
		"amount":   "100",
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	// 入金手续费从入账金额中扣除：100 - 5%
	updated, err := repository.NewAccountRepository(db).GetByID(context.Background(), nil, account.ID)
	require.NoError(t, err)
	require.True(t, updated.Balance.Equal(decimal.RequireFromString("95.00")), "实际 %s", updated.Balance)
}

func TestProfitReportContentType(t *testing.T) {
	router, db := newTestRouter(t)
	admin, _ := seedUser(t, db, "admin", decimal.Zero, true)

	w := doRequest(router, http.MethodGet, "/api/v1/admin/profit-report.csv", admin.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, w.Body.String(), "date,transaction_no,type,profit")
}
