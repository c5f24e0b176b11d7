package orders

import "errors"

var (
	ErrNotFound       = errors.New("order not found")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrOrderCancelled = errors.New("cannot update status of a cancelled order")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrDuplicateOrder = errors.New("order already exists")
	ErrUnknownStatus  = errors.New("order has an unknown stored status")
)
