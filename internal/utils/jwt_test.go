package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer  = "linkdeck"
	testSignKey = "test-sign-key"
)

func TestGenerateJWTTokenRoundTrip(t *testing.T) {
	token, err := GenerateJWTToken(testIssuer, 42, time.Hour, testSignKey)
	require.NoError(t, err)
	require.NotEmpty(t, token.SignedString)
	assert.Equal(t, int64(42), token.AccountID)

	parsed, err := ValidateAndParseJWTToken(token.SignedString, testSignKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, int64(42), parsed.AccountID)
	assert.Equal(t, testIssuer, parsed.Issuer)
}

func TestValidateAndParseJWTTokenCarriesClaims(t *testing.T) {
	token, err := GenerateJWTToken(testIssuer, 42, time.Hour, testSignKey)
	require.NoError(t, err)

	parsed, err := ValidateAndParseJWTToken(token.SignedString, testSignKey, testIssuer)
	require.NoError(t, err)

	// The subject claim must survive parsing so downstream account lookups
	// work on the returned token, not just on the cached AccountID.
	assert.Equal(t, "42", parsed.Subject)
	id, err := parsed.GetAccountID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestGenerateJWTTokenInvalidParams(t *testing.T) {
	tests := []struct {
		name     string
		issuer   string
		duration time.Duration
		signKey  string
	}{
		{name: "no issuer", duration: time.Hour, signKey: testSignKey},
		{name: "zero duration", issuer: testIssuer, signKey: testSignKey},
		{name: "no sign key", issuer: testIssuer, duration: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateJWTToken(tt.issuer, 1, tt.duration, tt.signKey)
			assert.Error(t, err)
		})
	}
}

func TestValidateAndParseJWTTokenRejectsWrongKey(t *testing.T) {
	token, err := GenerateJWTToken(testIssuer, 42, time.Hour, testSignKey)
	require.NoError(t, err)

	_, err = ValidateAndParseJWTToken(token.SignedString, "other-key", testIssuer)
	assert.Error(t, err)
}

func TestValidateAndParseJWTTokenRejectsWrongIssuer(t *testing.T) {
	token, err := GenerateJWTToken("someone-else", 42, time.Hour, testSignKey)
	require.NoError(t, err)

	_, err = ValidateAndParseJWTToken(token.SignedString, testSignKey, testIssuer)
	assert.Error(t, err)
}

func TestValidateAndParseJWTTokenRejectsExpired(t *testing.T) {
	token, err := GenerateJWTToken(testIssuer, 42, -time.Minute, testSignKey)
	require.NoError(t, err)

	_, err = ValidateAndParseJWTToken(token.SignedString, testSignKey, testIssuer)
	assert.Error(t, err)
}

func TestParseBearerToken(t *testing.T) {
	token, err := ParseBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ParseBearerToken("Bearer ")
	assert.Error(t, err)

	_, err = ParseBearerToken("abc.def.ghi")
	assert.Error(t, err)
}
