package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-crm/internal/model"
)

const testSecret = "test-secret-that-is-long-enough-123"

var admin = &model.User{ID: 1, Email: "admin@example.com", Name: "Admin User", Role: model.RoleAdmin}

func TestGenerateAndValidate(t *testing.T) {
	now := time.Date(2023, 10, 25, 9, 0, 0, 0, time.UTC)
	svc := NewJWTService(testSecret, "clinic-crm", 24*time.Hour, WithClock(func() time.Time { return now }))

	token, expiresAt, err := svc.GenerateToken(admin)
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), expiresAt)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, admin.Profile(), claims.Profile())
	assert.Equal(t, "clinic-crm", claims.Issuer)
}

func TestValidateExpired(t *testing.T) {
	now := time.Date(2023, 10, 25, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := NewJWTService(testSecret, "clinic-crm", 24*time.Hour, WithClock(clock))

	token, _, err := svc.GenerateToken(admin)
	require.NoError(t, err)

	now = now.Add(24*time.Hour + time.Minute)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateWrongSecret(t *testing.T) {
	token, _, err := NewJWTService("another-secret-entirely-0000000000", "clinic-crm", time.Hour).GenerateToken(admin)
	require.NoError(t, err)

	_, err = NewJWTService(testSecret, "clinic-crm", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateRejectsAlgNone(t *testing.T) {
	claims := model.TokenClaims{
		UserID: 1,
		Role:   model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "clinic-crm",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTService(testSecret, "clinic-crm", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateRejectsOtherIssuer(t *testing.T) {
	token, _, err := NewJWTService(testSecret, "someone-else", time.Hour).GenerateToken(admin)
	require.NoError(t, err)

	_, err = NewJWTService(testSecret, "clinic-crm", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateGarbage(t *testing.T) {
	_, err := NewJWTService(testSecret, "clinic-crm", time.Hour).ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
