package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaker_GenerateAndParse(t *testing.T) {
	maker := NewJWTMaker("test-secret", time.Minute)

	token, err := maker.GenerateToken("account-uuid-1", "company_admin", "company-uuid-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "account-uuid-1", claims.Subject)
	assert.Equal(t, "company_admin", claims.Role)
	assert.Equal(t, "company-uuid-1", claims.CompanyUUID)
}

func TestMaker_ParseExpiredToken(t *testing.T) {
	maker := NewJWTMaker("test-secret", -time.Minute)

	token, err := maker.GenerateToken("account-uuid-1", "employee", "company-uuid-1")
	require.NoError(t, err)

	_, err = maker.ParseToken(token)
	assert.Error(t, err)
}

func TestMaker_ParseWithWrongSecret(t *testing.T) {
	maker := NewJWTMaker("test-secret", time.Minute)
	other := NewJWTMaker("other-secret", time.Minute)

	token, err := maker.GenerateToken("account-uuid-1", "consultant", "")
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestMaker_EmptyCompanyOmitted(t *testing.T) {
	maker := NewJWTMaker("test-secret", time.Minute)

	token, err := maker.GenerateToken("account-uuid-2", "author", "")
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Empty(t, claims.CompanyUUID)
}
