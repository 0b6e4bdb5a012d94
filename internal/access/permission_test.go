package access

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodPut}

func TestIsAllowed_DefaultTable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		role   Role
		path   string
		method string
		want   bool
	}{
		{RoleManager, "/api/libraries", http.MethodGet, true},
		{RoleManager, "/api/libraries/4", http.MethodPatch, true},
		{RoleManager, "/api/libraries/4", http.MethodDelete, false},
		{RoleManager, "/api/users", http.MethodGet, true},
		{RoleManager, "/api/users", http.MethodDelete, false},
		{RoleManager, "/api/users/3", http.MethodGet, false},
		{RoleManager, "/api/books/12", http.MethodDelete, true},
		{RoleManager, "/api/loans/1", http.MethodPost, true},
		{RoleManager, "/api/reservations", http.MethodPatch, true},
		{RoleManager, "/api/penalties/9", http.MethodDelete, false},
		{RoleManager, "/api/loansharks", http.MethodGet, false},
		{RoleClient, "/api/users/me", http.MethodPatch, true},
		{RoleClient, "/api/users/me", http.MethodDelete, false},
		{RoleClient, "/api/books", http.MethodGet, true},
		{RoleClient, "/api/books/1", http.MethodGet, false},
		{RoleClient, "/api/reservations", http.MethodDelete, true},
		{RoleClient, "/api/feedbacks", http.MethodPost, true},
		{RoleClient, "/api/sales", http.MethodGet, false},
		{RoleDelivery, "/api/sales", http.MethodPatch, true},
		{RoleDelivery, "/api/sales", http.MethodPost, false},
		{RoleDelivery, "/api/users/me", http.MethodGet, true},
		{RoleDelivery, "/api/users/me", http.MethodPatch, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.want, IsAllowed(tc.role, tc.path, tc.method), "%s %s %s", tc.role, tc.method, tc.path)
	}
}

func TestIsAllowed_AdminCoversEveryAPIPath(t *testing.T) {
	t.Parallel()

	paths := []string{"/api/", "/api/books", "/api/users/42", "/api/notifications/1/read", "/api/addresses"}
	for _, path := range paths {
		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete} {
			assert.Truef(t, IsAllowed(RoleAdmin, path, method), "%s %s", method, path)
		}
	}

	assert.False(t, IsAllowed(RoleAdmin, "/health", http.MethodGet))
	assert.False(t, IsAllowed(RoleAdmin, "/api/books", http.MethodPut))
}

func TestIsAllowed_DenyByDefault(t *testing.T) {
	t.Parallel()

	probes := []string{
		"/api/books", "/api/books/1", "/api/users", "/api/users/me", "/api/users/5",
		"/api/loans", "/api/sales", "/api/feedbacks", "/api/libraries/2", "/api/categories",
		"/api/notifications", "/api/addresses/3", "/other",
	}

	table := DefaultTable()
	for _, role := range Roles() {
		for _, path := range probes {
			for _, method := range allMethods {
				granted := false
				for _, rule := range table.Rules(role) {
					if rule.Allows(path, method) {
						granted = true
						break
					}
				}
				assert.Equalf(t, granted, table.IsAllowed(role, path, method), "%s %s %s", role, method, path)
			}
		}
	}

	assert.False(t, IsAllowed(Role("LIBRARIAN"), "/api/books", http.MethodGet))
}

func TestTable_FirstMatchWins(t *testing.T) {
	t.Parallel()

	table := NewTable(map[Role][]Rule{
		RoleClient: {
			NewRule(Exact("/api/books"), http.MethodGet),
			NewRule(Pattern(`^/api/books`)),
		},
	})

	rule, ok := table.Match(RoleClient, "/api/books", http.MethodGet)
	require.True(t, ok)
	assert.Equal(t, "/api/books", rule.Path.String())

	rule, ok = table.Match(RoleClient, "/api/books", http.MethodDelete)
	require.True(t, ok)
	assert.Nil(t, rule.Methods)
	assert.Equal(t, `^/api/books`, rule.Path.String())
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	role, err := ParseRole(" manager ")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, role)

	_, err = ParseRole("viewer")
	require.Error(t, err)
	assert.False(t, Role("viewer").Valid())
}
