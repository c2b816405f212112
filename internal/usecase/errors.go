package usecase

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternal            = errors.New("internal error")
	ErrRoadmapUserNotFound = errors.New("roadmap user not found")
	ErrUnavailable         = errors.New("service unavailable")
)
