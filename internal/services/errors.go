package services

import "errors"

// Dashboard service errors
var (
	ErrTickerNotFound     = errors.New("ticker not found")
	ErrInvalidRange       = errors.New("invalid date range")
	ErrDatasetUnavailable = errors.New("dataset unavailable")
)
