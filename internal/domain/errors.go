package domain

import "errors"

var (
	ErrLayoutNotFound     = errors.New("layout not found")
	ErrAdNotFound         = errors.New("ad not found")
	ErrInvalidRecord      = errors.New("invalid record")
	ErrFeedNotEnabled     = errors.New("change feed not enabled for table")
	ErrSubscriptionClosed = errors.New("subscription closed after retry limit")
)
