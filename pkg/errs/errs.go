package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Kind 错误类别，决定HTTP状态码与业务码
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthentication
	KindPermission
	KindNotFound
	KindConflict
	KindBusiness
	KindSystem
)

var kindCode = map[Kind]int{
	KindValidation:     1001,
	KindAuthentication: 1002,
	KindPermission:     1003,
	KindNotFound:       1004,
	KindConflict:       1005,
	KindBusiness:       1006,
	KindSystem:         1500,
}

var kindStatus = map[Kind]int{
	KindValidation:     http.StatusBadRequest,
	KindAuthentication: http.StatusUnauthorized,
	KindPermission:     http.StatusForbidden,
	KindNotFound:       http.StatusNotFound,
	KindConflict:       http.StatusConflict,
	KindBusiness:       http.StatusBadRequest,
	KindSystem:         http.StatusInternalServerError,
}

// Error 带类别的业务错误，service层返回，handler边界统一映射为响应包络
type Error struct {
	Kind    Kind
	Code    int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Status 错误对应的HTTP状态码
func (e *Error) Status() int {
	if s, ok := kindStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Code: kindCode[kind], Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Code: kindCode[kind], Message: message, cause: cause}
}

// From 边界映射：已分类的错误原样返回，其余一律归为系统错误
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(KindSystem, "internal server error", err)
}

// Is 判断错误是否属于某个类别
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Translate 把存储层错误翻译成类别错误，不把驱动错误码漏给客户端
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(KindNotFound, "record not found", err)
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1062:
			if field := dupKeyField(me.Message); field != "" {
				return Wrap(KindConflict, fmt.Sprintf("%s already exists", field), err)
			}
			return Wrap(KindConflict, "duplicate value", err)
		case 1451, 1452:
			return Wrap(KindBusiness, "operation violates a data relation", err)
		}
	}
	return Wrap(KindSystem, "internal server error", err)
}

// dupKeyField 从1062报文提取索引名尾段，如 "crm_user.user_name" -> "user_name"
func dupKeyField(msg string) string {
	i := strings.LastIndex(msg, "for key '")
	if i < 0 {
		return ""
	}
	key := msg[i+len("for key '"):]
	if j := strings.Index(key, "'"); j >= 0 {
		key = key[:j]
	}
	if j := strings.LastIndex(key, "."); j >= 0 {
		key = key[j+1:]
	}
	return key
}
