package errno

import (
	"errors"
	"net/http"
)

// BizError 携带业务错误码与底层原因
type BizError struct {
	Errno *Errno
	Cause error
}

// NewBizError 包装底层错误
func NewBizError(e *Errno, cause error) *BizError {
	if e == nil {
		e = ErrInternalServer
	}
	return &BizError{Errno: e, Cause: cause}
}

func (e *BizError) Error() string {
	if e.Cause == nil {
		return e.Errno.Message
	}
	return e.Errno.Message + ": " + e.Cause.Error()
}

func (e *BizError) Unwrap() error { return e.Cause }

// Is 使 errors.Is(err, errno.ErrXxx) 能匹配到包装后的错误
func (e *BizError) Is(target error) bool {
	t, ok := target.(*Errno)
	return ok && t == e.Errno
}

// Decode 提取错误对应的 Errno，未识别的错误视为内部错误
func Decode(err error) *Errno {
	if err == nil {
		return OK
	}
	var biz *BizError
	if errors.As(err, &biz) {
		return biz.Errno
	}
	var en *Errno
	if errors.As(err, &en) {
		return en
	}
	return ErrInternalServer
}

// HTTPStatus 将错误映射为HTTP状态码
func HTTPStatus(err error) int {
	switch Decode(err) {
	case OK:
		return http.StatusOK
	case ErrInvalidParam, ErrInvalidInput, ErrMissingSource, ErrAmbiguousSource, ErrInvalidMode, ErrVideoIDRequired:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrNotFound, ErrRecordNotFound, ErrJobNotFound:
		return http.StatusNotFound
	case ErrInvalidState:
		return http.StatusConflict
	case ErrQueueFull, ErrStatusTrackingOff:
		return http.StatusServiceUnavailable
	case ErrJobTimeout:
		return http.StatusGatewayTimeout
	case ErrMedia:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// IsUserError 判断是否为调用方导致的错误
func IsUserError(err error) bool {
	s := HTTPStatus(err)
	return s >= 400 && s < 500 && s != http.StatusUnprocessableEntity
}
