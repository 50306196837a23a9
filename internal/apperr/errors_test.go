package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindReferenced:   http.StatusConflict,
		KindValidation:   http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, StatusOf(kind), string(kind))
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("loading brand: %w", NotFound("brand %q not found", "acme"))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(nil, KindNotFound))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestFromHidesUnknownCauses(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := From(cause)

	assert.Equal(t, KindInternal, err.Kind)
	assert.Equal(t, "internal server error", err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestInvalidField(t *testing.T) {
	err := InvalidField("price", "must not be negative")

	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, map[string]string{"price": "must not be negative"}, err.Fields)
}
