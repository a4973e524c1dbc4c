package handler

import (
	"errors"
	"strconv"

	"ledgerpay/internal/config"
	"ledgerpay/internal/repository"
	"ledgerpay/internal/service"
	"ledgerpay/pkg/metrics"
	"ledgerpay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	accountService    *service.AccountService
	ledgerService     *service.LedgerService
	requestService    *service.MoneyRequestService
	withdrawalService *service.WithdrawalService
	adminService      *service.AdminService
}

// NewHandler 创建处理器实例
func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config, collector *metrics.Collector) *Handler {
	ledger := service.NewLedgerService(db, rdb, cfg, collector)
	return &Handler{
		accountService:    service.NewAccountService(db, cfg),
		ledgerService:     ledger,
		requestService:    service.NewMoneyRequestService(db, cfg, ledger),
		withdrawalService: service.NewWithdrawalService(db, cfg, ledger),
		adminService:      service.NewAdminService(db, cfg),
	}
}

// handleServiceError 业务错误到响应码的统一映射
// AlreadyProcessed 是幂等信号，客户端可以放心重复提交审批动作
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		response.BusinessError(c, response.CodeInvalidAmount, err.Error())
	case errors.Is(err, service.ErrInsufficientFunds):
		response.BusinessError(c, response.CodeInsufficientFunds, err.Error())
	case errors.Is(err, service.ErrSelfTransfer):
		response.BusinessError(c, response.CodeSelfTransfer, err.Error())
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrAdminUndeletable):
		response.Forbidden(c, err.Error())
	case errors.Is(err, repository.ErrUserNotFound):
		response.BusinessError(c, response.CodeUserNotFound, err.Error())
	case errors.Is(err, repository.ErrAccountNotFound):
		response.BusinessError(c, response.CodeAccountNotFound, err.Error())
	case errors.Is(err, repository.ErrRequestNotFound):
		response.BusinessError(c, response.CodeRequestNotFound, err.Error())
	case errors.Is(err, repository.ErrUsernameTaken):
		response.BusinessError(c, response.CodeUsernameTaken, err.Error())
	case errors.Is(err, repository.ErrRequestProcessed):
		response.BusinessError(c, response.CodeAlreadyProcessed, err.Error())
	default:
		response.ServerError(c, err.Error())
	}
}

// ============================================================
// 账户相关接口
// ============================================================

// GetAccount 查询当前用户账户（首次访问时创建）
// GET /api/v1/account
func (h *Handler) GetAccount(c *gin.Context) {
	account, err := h.accountService.GetOrCreateAccount(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, account)
}

// GetAccountQR 查询收款码内容
// GET /api/v1/account/qr
func (h *Handler) GetAccountQR(c *gin.Context) {
	payload, err := h.accountService.GetQRPayload(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"qr_payload": payload})
}

// Dashboard 用户看板
// GET /api/v1/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	data, err := h.accountService.Dashboard(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, data)
}

// ListTransactions 查询交易历史
// GET /api/v1/transactions?page=1&page_size=20
func (h *Handler) ListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	txs, total, err := h.accountService.ListTransactions(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      txs,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ============================================================
// 转账相关接口
// ============================================================

// TransferRequest 转账请求
type TransferRequest struct {
	ToUsername string          `json:"to_username" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Note       string          `json:"note"`
}

// Transfer 按用户名转账
// POST /api/v1/transfer
func (h *Handler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	trans, err := h.ledgerService.Transfer(c.Request.Context(), currentUserID(c), req.ToUsername, req.Amount, req.Note)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, trans)
}

// PayAccountRequest 扫码付款请求
type PayAccountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Note   string          `json:"note"`
}

// PayAccount 扫码付款（按收款账户ID）
// POST /api/v1/account/:id/pay
func (h *Handler) PayAccount(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "账户ID参数错误")
		return
	}

	var req PayAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	trans, err := h.ledgerService.TransferToAccount(c.Request.Context(), currentUserID(c), accountID, req.Amount, req.Note)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, trans)
}

// ============================================================
// 收款请求相关接口
// ============================================================

// CreateMoneyRequestRequest 创建收款请求
type CreateMoneyRequestRequest struct {
	TargetAccountID int64           `json:"target_account_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Note            string          `json:"note"`
}

// CreateMoneyRequest 创建收款请求：我希望 target 付给我
// POST /api/v1/requests
func (h *Handler) CreateMoneyRequest(c *gin.Context) {
	var req CreateMoneyRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	account, err := h.accountService.GetOrCreateAccount(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	mr, err := h.requestService.Create(c.Request.Context(), account.ID, req.TargetAccountID, req.Amount, req.Note)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, mr)
}

// ListMoneyRequests 查询收款请求（双向）
// GET /api/v1/requests
func (h *Handler) ListMoneyRequests(c *gin.Context) {
	data, err := h.requestService.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, data)
}

// ApproveMoneyRequest 付款方审批通过收款请求
// POST /api/v1/requests/:id/approve
func (h *Handler) ApproveMoneyRequest(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "请求ID参数错误")
		return
	}

	trans, err := h.requestService.Approve(c.Request.Context(), requestID, currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, trans)
}

// RejectMoneyRequest 付款方拒绝收款请求
// POST /api/v1/requests/:id/reject
func (h *Handler) RejectMoneyRequest(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "请求ID参数错误")
		return
	}

	if err := h.requestService.Reject(c.Request.Context(), requestID, currentUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "请求已拒绝"})
}

// ============================================================
// 提现相关接口
// ============================================================

// CreateWithdrawalRequest 提现申请
type CreateWithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Note   string          `json:"note"`
}

// CreateWithdrawal 提交提现申请（等待管理员审批，不动余额）
// POST /api/v1/withdrawals
func (h *Handler) CreateWithdrawal(c *gin.Context) {
	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	wr, err := h.withdrawalService.Create(c.Request.Context(), currentUserID(c), req.Amount, req.Note)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, wr)
}

// ListWithdrawals 查询自己的待审批提现
// GET /api/v1/withdrawals
func (h *Handler) ListWithdrawals(c *gin.Context) {
	list, err := h.withdrawalService.ListPendingByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}
