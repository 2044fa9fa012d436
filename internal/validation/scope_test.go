package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/zonetoken/internal/claims"
)

func TestValidScopeName(t *testing.T) {
	valids := []string{
		"a",
		"profile",
		"profile:read",
		"zonetoken!t12.read",
		"a_b-c.d:scope2",
		"a" + strings.Repeat("b", 126) + "c",
	}
	for _, v := range valids {
		assert.True(t, ValidScopeName(v), "expected valid: %q", v)
	}

	invalids := []string{
		"",
		":lead",
		"trail.",
		"bad space",
		"UPPER",
		"semicolon;hack",
		strings.Repeat("a", 129),
	}
	for _, v := range invalids {
		assert.False(t, ValidScopeName(v), "expected invalid: %q", v)
	}
}

func TestLocalScope(t *testing.T) {
	assert.Equal(t, "app!t1.read", LocalScope("app!t1", "read"))
	assert.Equal(t, "other!t2.read", LocalScope("app!t1", "other!t2.read"))
	assert.Equal(t, "read", LocalScope("", "read"))
}

func TestRequireScopes(t *testing.T) {
	_, err := RequireScopes("ok", "bad scope")
	require.Error(t, err)

	v, err := RequireScopes("app!t1.read", "APP!t1.write")
	require.NoError(t, err)

	ok := claims.FromMap(map[string]any{"scope": []any{"app!t1.read", "app!t1.write", "openid"}})
	assert.NoError(t, v.Validate(ok))

	partial := claims.FromMap(map[string]any{"scope": "app!t1.read"})
	err = v.Validate(partial)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingScope))
	assert.Contains(t, err.Error(), "app!t1.write")
}
