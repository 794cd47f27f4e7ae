// Package storage 计时器快照的持久化后端。
// 所有后端在键不存在时返回 (nil, nil)，失败时返回可用 ErrStoreUnavailable 判断的错误。
package storage

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrStoreUnavailable = errors.New("store unavailable")

// UnavailableError 记录失败的操作和键
type UnavailableError struct {
	Op  string
	Key string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrStoreUnavailable }

// Unavailable 包装后端错误
func Unavailable(op, key string, err error) error {
	return &UnavailableError{Op: op, Key: key, Err: err}
}
