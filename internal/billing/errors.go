package billing

import "errors"

var (
	ErrCardNotFound    = errors.New("card not found")
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrInvalidPurchase = errors.New("invalid purchase")
	ErrInvalidCard     = errors.New("invalid card")
)
