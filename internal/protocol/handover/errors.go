package handover

import "errors"

var (
	ErrUnrecognizedHandoverType = errors.New("handover: unrecognized handover type")
	ErrMissingCollisionRecord   = errors.New("handover: missing collision resolution record")
	ErrInvalidAlternateCarrier  = errors.New("handover: invalid alternate carrier record")
	ErrDanglingCarrierReference = errors.New("handover: dangling carrier data reference")
	ErrMalformedAddress         = errors.New("handover: malformed bluetooth address")
)
