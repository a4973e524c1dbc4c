package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// 请求状态常量
// ============================================================================
//
// 收款请求和提现申请共用同一套两段式状态机：
//
//   PENDING ──> APPROVED  （终态）
//       └─────> REJECTED  （终态）
//
// 终态之后不允许任何状态变更，状态流转通过条件更新保证（见 repository）

const (
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

// IsTerminalStatus 是否为终态
func IsTerminalStatus(status string) bool {
	return status == RequestStatusApproved || status == RequestStatusRejected
}

// MoneyRequest 收款请求表
// requester 希望从 target 处收到 amount，target 审批通过后触发一笔转账
type MoneyRequest struct {
	ID                 int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestNo          string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"request_no"`
	RequesterAccountID int64           `gorm:"index;not null" json:"requester_account_id"` // 收款方账户
	TargetAccountID    int64           `gorm:"index;not null" json:"target_account_id"`    // 付款方账户（唯一有权审批的人）
	Amount             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status             string          `gorm:"type:varchar(20);index;not null;default:PENDING" json:"status"`
	Note               string          `gorm:"type:varchar(256)" json:"note"`
	CreatedAt          time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MoneyRequest) TableName() string {
	return "money_request"
}
