package orderbook

import "errors"

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidModify   = errors.New("modify at same price must reduce quantity")
	ErrInvalidPrice    = errors.New("invalid order price")
	ErrInvalidQuantity = errors.New("invalid order quantity")
)
