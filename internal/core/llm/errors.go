package llm

import "errors"

var (
	// ErrRateLimitExceeded はレート制限を超えた場合のエラー
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidRequest はリクエストが不正な場合のエラー
	ErrInvalidRequest = errors.New("invalid request")

	// ErrMaxRetriesExceeded は最大リトライ回数を超えた場合のエラー
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrEmptyResponse はレスポンスが空だった場合のエラー
	ErrEmptyResponse = errors.New("empty completion response")
)
