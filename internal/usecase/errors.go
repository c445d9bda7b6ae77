package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	//400 入力不正
	ErrValidation = errors.New("validation error")
	//401 認証失敗
	ErrUnauthorized = errors.New("unauthorized")
	//403 権限
	ErrForbidden = errors.New("forbidden")
	//404
	ErrNotFound = errors.New("not found")
	//409 競合
	ErrConflict = errors.New("conflict")
	//429 試行回数オーバー
	ErrTooManyRequests = errors.New("too many requests")

	//401 同時refreshの負け側。Cookieは消さない
	ErrRefreshRaced = fmt.Errorf("%w: refresh raced", ErrUnauthorized)
)

// クライアントに返すメッセージとステータスを持つエラー
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
		Err:     sentinelFor(status),
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 同時refreshで先に回転された側に返す
func NewRefreshRacedError() error {
	return &HTTPError{
		Status:  http.StatusUnauthorized,
		Message: "Token revoked",
		Err:     ErrRefreshRaced,
	}
}

// 400
func NewValidationError(message string) error {
	return NewHTTPError(http.StatusBadRequest, message)
}

func sentinelFor(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrTooManyRequests
	default:
		return nil
	}
}
