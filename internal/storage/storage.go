// Package storage объявляет ошибки слоя хранения, общие для репозитория и сервисов.
package storage

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user with this email already exists")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrRoleAlreadySet       = errors.New("role already set")
)
