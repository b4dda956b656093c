package auth

import (
	"strings"
	"testing"
	"time"

	"techhub/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-longer-than-32-bytes"

func createTestUser() *models.User {
	return &models.User{ID: "7", Email: "test@example.com", Role: models.RoleMentor}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("mysecretpassword", 4)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	hash2, err := HashPassword("mysecretpassword", 4)
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2, "hashes should differ due to salt")

	assert.True(t, CheckPasswordHash("mysecretpassword", hash))
	assert.False(t, CheckPasswordHash("wrongpassword", hash))
	assert.False(t, CheckPasswordHash("mysecretpassword", "invalidhashstring"))
}

func TestVerifyPassword_PlaintextGate(t *testing.T) {
	hash, err := HashPassword("secret1", 4)
	require.NoError(t, err)

	assert.True(t, verifyPassword("secret1", hash, false))
	assert.True(t, verifyPassword("secret1", hash, true))
	assert.False(t, verifyPassword("nope", hash, true))

	assert.False(t, verifyPassword("plain1", "plain1", false), "plaintext refused without opt-in")
	assert.True(t, verifyPassword("plain1", "plain1", true))
	assert.False(t, verifyPassword("other", "plain1", true))
	assert.False(t, verifyPassword("", "", true), "empty stored password never matches")
}

func TestGenerateAndValidateJWT(t *testing.T) {
	user := createTestUser()

	tokenString, err := GenerateJWT(user, testSecret, time.Hour)
	require.NoError(t, err)
	assert.Len(t, strings.Split(tokenString, "."), 3)

	claims, err := ValidateJWT(tokenString, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.ID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, models.RoleMentor, claims.Role)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.Equal(t, "7", claims.Subject)

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, 5*time.Second)
}

func TestValidateJWT_Failures(t *testing.T) {
	user := createTestUser()
	valid, err := GenerateJWT(user, testSecret, time.Hour)
	require.NoError(t, err)

	t.Run("Malformed", func(t *testing.T) {
		_, err := ValidateJWT("this.is.not.a.valid.token", testSecret)
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		_, err := ValidateJWT(valid, "different-secret-key-also-needs-to-be-long")
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		expired, err := GenerateJWT(user, testSecret, -time.Second)
		require.NoError(t, err)
		_, err = ValidateJWT(expired, testSecret)
		assert.ErrorIs(t, err, models.ErrInvalidToken)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("Wrong algorithm", func(t *testing.T) {
		claims := &Claims{ID: "7", RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = ValidateJWT(none, testSecret)
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("Foreign issuer", func(t *testing.T) {
		claims := &Claims{ID: "7", RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = ValidateJWT(foreign, testSecret)
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("Missing secret", func(t *testing.T) {
		_, err := ValidateJWT(valid, "")
		assert.ErrorIs(t, err, models.ErrConfiguration)
		assert.NotErrorIs(t, err, models.ErrInvalidToken)

		_, err = GenerateJWT(user, "", time.Hour)
		assert.ErrorIs(t, err, models.ErrConfiguration)
	})
}
