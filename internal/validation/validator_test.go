package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(signup{Email: "reader@example.com", Password: "long enough"}))

	err := Struct(signup{Email: "not-an-email", Password: "long enough"})
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "email", fieldErr.Field)
	assert.Equal(t, "email", fieldErr.Tag)

	err = Struct(signup{Email: "reader@example.com", Password: "short"})
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "password", fieldErr.Field)
	assert.Equal(t, "min", fieldErr.Tag)
}
