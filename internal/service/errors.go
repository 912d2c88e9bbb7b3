package service

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotMember    = errors.New("user is not a member of this room")
	ErrUserNotFound = errors.New("user not found")
	ErrValidation   = errors.New("validation failed")
	ErrInternal     = errors.New("internal server error")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storageError 將儲存層失敗包裝為 ErrInternal，保留原始錯誤供日誌使用
func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrInternal, err)
}
