package model

import "time"

// User 用户表
// 认证在外部网关完成，这里只保存身份与管理员标记
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"uniqueIndex;type:varchar(64);not null" json:"username"`
	Email     string    `gorm:"type:varchar(128)" json:"email"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"` // 管理员能力标记，路由边界统一校验
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "user"
}
