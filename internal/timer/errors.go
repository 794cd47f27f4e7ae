package timer

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidConfig     = errors.New("invalid config")
)

// InvalidTransitionError 命令的前置条件不满足
type InvalidTransitionError struct {
	From      Status
	Attempted Command
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Attempted, e.From)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// InvalidConfigError 时长输入不是整数
type InvalidConfigError struct {
	Input string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid seconds %q: must be a positive integer", e.Input)
}

func (e *InvalidConfigError) Is(target error) bool { return target == ErrInvalidConfig }
