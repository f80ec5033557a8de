package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindStatusMapping(t *testing.T) {
	cases := []struct {
		kind   Kind
		status int
		code   int
	}{
		{KindValidation, http.StatusBadRequest, 1001},
		{KindAuthentication, http.StatusUnauthorized, 1002},
		{KindPermission, http.StatusForbidden, 1003},
		{KindNotFound, http.StatusNotFound, 1004},
		{KindConflict, http.StatusConflict, 1005},
		{KindBusiness, http.StatusBadRequest, 1006},
		{KindSystem, http.StatusInternalServerError, 1500},
	}
	for _, c := range cases {
		e := New(c.kind, "x")
		assert.Equal(t, c.status, e.Status())
		assert.Equal(t, c.code, e.Code)
	}
}

func TestFrom(t *testing.T) {
	typed := New(KindPermission, "no")
	assert.Same(t, typed, From(typed))

	wrapped := From(errors.New("boom"))
	assert.Equal(t, KindSystem, wrapped.Kind)
	assert.Equal(t, "internal server error", wrapped.Message, "raw cause never leaks to the client")
}

func TestTranslateRecordNotFound(t *testing.T) {
	err := Translate(gorm.ErrRecordNotFound)
	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, KindNotFound, e.Kind)
}

func TestTranslateDuplicateKey(t *testing.T) {
	err := Translate(&mysql.MySQLError{
		Number:  1062,
		Message: "Duplicate entry 'admin' for key 'crm_user.user_name'",
	})
	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, KindConflict, e.Kind)
	assert.Equal(t, "user_name already exists", e.Message)
}

func TestTranslateForeignKey(t *testing.T) {
	err := Translate(&mysql.MySQLError{Number: 1452, Message: "fk fails"})
	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, KindBusiness, e.Kind)
}

func TestIs(t *testing.T) {
	assert.True(t, Is(New(KindNotFound, "x"), KindNotFound))
	assert.False(t, Is(New(KindNotFound, "x"), KindConflict))
	assert.False(t, Is(errors.New("plain"), KindSystem))
}
