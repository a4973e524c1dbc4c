package handler

import (
	"strconv"

	"ledgerpay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ============================================================
// 管理端接口（统一经过 AdminMiddleware）
// ============================================================

// AdminDepositRequest 入金请求
type AdminDepositRequest struct {
	Username string          `json:"username" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Note     string          `json:"note"`
}

// AdminDeposit 管理员向用户账户入金
// POST /api/v1/admin/deposit
//
// 【注意】手续费从入金金额中扣除，用户到账净额 = amount - fee
func (h *Handler) AdminDeposit(c *gin.Context) {
	var req AdminDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	trans, err := h.ledgerService.Deposit(c.Request.Context(), req.Username, req.Amount, req.Note)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, trans)
}

// AdminListWithdrawals 待审批+已处理的提现列表
// GET /api/v1/admin/withdrawals
func (h *Handler) AdminListWithdrawals(c *gin.Context) {
	data, err := h.withdrawalService.ListForAdmin(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, data)
}

// AdminApproveWithdrawal 审批通过提现
// POST /api/v1/admin/withdrawals/:id/approve
func (h *Handler) AdminApproveWithdrawal(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "申请ID参数错误")
		return
	}

	trans, err := h.withdrawalService.Approve(c.Request.Context(), requestID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, trans)
}

// AdminRejectWithdrawal 拒绝提现
// POST /api/v1/admin/withdrawals/:id/reject
func (h *Handler) AdminRejectWithdrawal(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "申请ID参数错误")
		return
	}

	if err := h.withdrawalService.Reject(c.Request.Context(), requestID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "提现申请已拒绝"})
}

// AdminDashboard 管理端看板
// GET /api/v1/admin/dashboard
func (h *Handler) AdminDashboard(c *gin.Context) {
	data, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, data)
}

// AdminProfitReport 利润明细 CSV 导出
// GET /api/v1/admin/profit-report.csv
func (h *Handler) AdminProfitReport(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="profit_report.csv"`)

	if err := h.adminService.WriteProfitReportCSV(c.Request.Context(), c.Writer); err != nil {
		response.ServerError(c, err.Error())
		return
	}
}

// AdminCreateUserRequest 创建用户请求
type AdminCreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
}

// AdminCreateUser 创建用户
// POST /api/v1/admin/users
func (h *Handler) AdminCreateUser(c *gin.Context) {
	var req AdminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.adminService.CreateUser(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// AdminListUsers 用户列表
// GET /api/v1/admin/users
func (h *Handler) AdminListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"list": users})
}

// AdminDeleteUser 删除用户（管理员账号不可删除）
// DELETE /api/v1/admin/users/:id
func (h *Handler) AdminDeleteUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "用户ID参数错误")
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), userID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "用户已删除"})
}
