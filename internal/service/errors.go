package service

import (
	"errors"
)

// 业务错误统一定义
// 全部返回给直接调用方，由 handler 映射为响应码，任何一层都不吞错
var (
	ErrInvalidAmount     = errors.New("金额必须大于0")
	ErrInsufficientFunds = errors.New("余额不足")
	ErrForbidden         = errors.New("无权执行该操作")
	ErrSelfTransfer      = errors.New("不能向自己转账")
	ErrAdminUndeletable  = errors.New("不能删除管理员账号")
)
