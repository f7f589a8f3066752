package domain

import "errors"

var (
	ErrCookieBlobMissing = errors.New("cookie blob not set")
	ErrCookieBlobDecode  = errors.New("cookie blob malformed")
	ErrSessionRejected   = errors.New("session rejected by validation probe")
	ErrWalletNotFound    = errors.New("wallet not found")
)
