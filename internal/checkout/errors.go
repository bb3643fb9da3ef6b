package checkout

import "errors"

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrSessionNotFound   = errors.New("checkout session not found")
	ErrSessionClosed     = errors.New("checkout session already placed an order")
	ErrInvalidAddress    = errors.New("address is incomplete")
	ErrUnknownAddress    = errors.New("address not in this checkout")
	ErrNoAddress         = errors.New("no delivery address")
	ErrWrongStep         = errors.New("action not available on this step")
	ErrInvalidMethod     = errors.New("unknown payment method")
	ErrWrongMethod       = errors.New("action does not match the chosen payment method")
	ErrPaymentIncomplete = errors.New("payment callback is missing the payment id or signature")
	ErrBadSignature      = errors.New("payment signature mismatch")
	ErrNoIntent          = errors.New("payment was not initiated")
)

// Banner texts.
const (
	msgLoadFailed      = "Failed to load data. Please try again."
	msgSaveAddress     = "Failed to save address. Please try again."
	msgDeleteLinked    = "This address cannot be deleted because it is linked to an order."
	msgDeleteAddress   = "Failed to delete address. Please try again."
	msgNoAddress       = "Please provide a valid delivery address"
	msgEmptyCart       = "Cart is empty"
	msgPlaceFailed     = "Failed to place order: "
	msgPlaceFallback   = "please try again"
	msgInitiatePayment = "Failed to initiate payment. Please try again."
	msgSignature       = "Payment could not be verified. Please contact support."
)
