package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnknownTemplate   = errors.New("unknown template")
	ErrInvalidPlan       = errors.New("invalid plan")
	ErrInvalidCatalog    = errors.New("invalid catalog")
	ErrGateway           = errors.New("payment gateway failure")
	ErrDuplicateDelivery = errors.New("duplicate delivery")
	ErrStorage           = errors.New("storage unavailable")
	ErrSessionClosed     = errors.New("checkout session closed")
)
