package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account 账户表
// 每个用户一个账户，余额是整个系统唯一会被并发修改的字段
//
// 【余额不变量】balance >= 0 永远成立
// 余额只能由转账引擎在数据库事务内修改，写入前完成校验，不允许事后补救
type Account struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64           `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"` // 可用余额（保留2位小数）
	QRPayload string          `gorm:"type:varchar(256)" json:"qr_payload"`                  // 收款码内容（懒生成后缓存）
	Version   int             `gorm:"not null;default:0" json:"version"`                    // 乐观锁版本号
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "account"
}
