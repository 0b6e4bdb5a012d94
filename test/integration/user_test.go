//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/access"
	"library-api/internal/model"
	"library-api/pkg/apierror"
)

func TestCreateUserWithUnknownLibrary(t *testing.T) {
	env := newTestEnv(t, nil)
	missing := int64(999999)

	_, err := env.users.Create(context.Background(), model.User{
		Email:        "orphan@example.com",
		PasswordHash: "x",
		Role:         access.RoleClient,
		LibraryID:    &missing,
	})

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	assert.Equal(t, "library_id", apiErr.Details)
}
