package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalRequest 提现申请表
// 用户提交申请时不做任何余额变动，只记录意图
// 余额扣减发生且仅发生在管理员审批通过的那一刻
type WithdrawalRequest struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestNo string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"request_no"`
	UserID    int64           `gorm:"index;not null" json:"user_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status    string          `gorm:"type:varchar(20);index;not null;default:PENDING" json:"status"`
	Note      string          `gorm:"type:varchar(256)" json:"note"`
	CreatedAt time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_request"
}
