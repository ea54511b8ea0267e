package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "eligibility/pkg/domain-errors"
)

var jwtService = NewJWTService("test-signing-key", "test-issuer")
var sessionID = uuid.New()
var identity = IdentityInput{
	Email:                "ops@council.example",
	OrganisationID:       "org-42",
	OrganisationCategory: "Local Authority",
	EstablishmentNumber:  "201",
	SessionID:            sessionID,
}

func Test_GenerateIdentityToken(t *testing.T) {
	token, err := jwtService.GenerateIdentityToken(identity, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@council.example", claims.Email)
	assert.Equal(t, "org-42", claims.OrganisationID)
	assert.Equal(t, "Local Authority", claims.OrganisationCategory)
	assert.Equal(t, "201", claims.EstablishmentNumber)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateIdentityToken(identity, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, "token has expired", dErrors.MessageOf(err))
}

func Test_ValidateToken_WrongIssuer(t *testing.T) {
	other := NewJWTService("test-signing-key", "someone-else")
	token, err := other.GenerateIdentityToken(identity, time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{OrganisationID: "org-1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(signed)
	require.Error(t, err)
}

func Test_ValidateToken_RequiresOrganisation(t *testing.T) {
	in := identity
	in.OrganisationID = ""
	token, err := jwtService.GenerateIdentityToken(in, time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, "token has no organisation", dErrors.MessageOf(err))
}

func Test_Adapter_MapsClaims(t *testing.T) {
	token, err := jwtService.GenerateIdentityToken(identity, time.Hour)
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(jwtService).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "org-42", claims.OrganisationID)
	assert.Equal(t, sessionID.String(), claims.SessionID)
}
