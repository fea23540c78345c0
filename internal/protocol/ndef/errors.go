package ndef

import "errors"

var (
	ErrBufferUnderrun         = errors.New("ndef: buffer underrun")
	ErrMissingMessageBegin    = errors.New("ndef: first record missing message-begin flag")
	ErrUnexpectedMessageBegin = errors.New("ndef: message-begin flag on non-first record")
	ErrUnsupportedChunking    = errors.New("ndef: chunked records are not supported")
	ErrEmptyMessage           = errors.New("ndef: message has no records")
	ErrFieldTooLong           = errors.New("ndef: field too long")
)
