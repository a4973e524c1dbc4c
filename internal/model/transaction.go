package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// 交易类型常量
// ============================================================================

const (
	TransactionTypeTransfer = "TRANSFER" // 用户间转账
	TransactionTypeDeposit  = "DEPOSIT"  // 管理员入金
	TransactionTypeWithdraw = "WITHDRAW" // 管理员审批后的提现
)

// ============================================================================
// 交易流水实体
// ============================================================================

// Transaction 交易流水表
// 记录每一笔改变余额的操作，是对账和审计的核心依据
//
// 【重要】流水表设计原则：
// 1. 只追加，不修改，不删除 —— 保证审计可追溯
// 2. from/to 可为空：入金没有来源账户，提现没有目标账户
// 3. 流水与手续费利润记录在同一事务内创建，不会出现孤儿记录
type Transaction struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"` // 流水号（全局唯一）
	FromAccountID *int64          `gorm:"index" json:"from_account_id"`                                // 出款账户（入金时为空）
	ToAccountID   *int64          `gorm:"index" json:"to_account_id"`                                  // 入款账户（提现时为空）
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`                   // 交易金额（> 0）
	Fee           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"fee"`            // 平台手续费（>= 0）
	Type          string          `gorm:"type:varchar(20);not null" json:"type"`                       // 交易类型
	Note          string          `gorm:"type:varchar(256)" json:"note"`                               // 备注
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Transaction) TableName() string {
	return "ledger_transaction"
}

// ProfitRecord 平台利润表
// 每笔交易的手续费对应一条利润记录，金额恒等于该笔交易的 fee
// 与 Transaction 一对一，在同一事务内创建
type ProfitRecord struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID int64           `gorm:"uniqueIndex;not null" json:"transaction_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

func (ProfitRecord) TableName() string {
	return "profit_record"
}
