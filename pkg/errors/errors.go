// Package errors 跨层共享的哨兵错误
package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：司机或报告已被其他管理员修改
var ErrOptimisticLock = errors.New("记录已被其他操作修改，请刷新后重试")
