package errors

import "fmt"

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeValidation   = 422
	CodeServerError  = 500
)

// ========== 类型化错误 ==========

// Kind 错误类别
type Kind int

const (
	KindUnauthenticated Kind = iota // 未认证
	KindForbidden                   // 无权限
	KindBadRequest                  // 参数错误
	KindNotFound                    // 资源不存在
	KindConflict                    // 唯一键冲突
	KindValidation                  // 载荷校验失败
	KindInternal                    // 内部错误
)

// AppError 业务错误，携带类别，由请求边界转换为HTTP状态码
// 授权核心内部不做日志、不做恢复，错误原样抛到边界
type AppError struct {
	Kind    Kind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// HTTPCode 类别对应的错误码
func (e *AppError) HTTPCode() int {
	switch e.Kind {
	case KindUnauthenticated:
		return CodeUnauthorized
	case KindForbidden:
		return CodeForbidden
	case KindBadRequest:
		return CodeInvalidParam
	case KindNotFound:
		return CodeNotFound
	case KindConflict:
		return CodeConflict
	case KindValidation:
		return CodeValidation
	default:
		return CodeServerError
	}
}

// ========== 构造方法 ==========

func Unauthenticated(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Internal(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// IsKind 判断错误是否为指定类别
func IsKind(err error, kind Kind) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Kind == kind
}
