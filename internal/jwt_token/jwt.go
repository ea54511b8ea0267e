package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "eligibility/pkg/domain-errors"
)

// Claims are the identity assertions the sign-in provider places in the
// bearer token presented to the bulk-check API.
type Claims struct {
	Email                string `json:"email"`
	OrganisationID       string `json:"organisation_id"`
	OrganisationCategory string `json:"organisation_category"`
	EstablishmentNumber  string `json:"establishment_number"`
	SessionID            string `json:"session_id"`
	jwt.RegisteredClaims
}

// IdentityInput is what GenerateIdentityToken signs.
type IdentityInput struct {
	Email                string
	OrganisationID       string
	OrganisationCategory string
	EstablishmentNumber  string
	SessionID            uuid.UUID
}

// JWTService validates (and, for local tooling and tests, issues) HS256 identity tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
}

func NewJWTService(signingKey string, issuer string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

func (s *JWTService) GenerateIdentityToken(in IdentityInput, expiresIn time.Duration) (string, error) {
	now := time.Now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:                in.Email,
		OrganisationID:       in.OrganisationID,
		OrganisationCategory: in.OrganisationCategory,
		EstablishmentNumber:  in.EstablishmentNumber,
		SessionID:            in.SessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	var opts []jwt.ParserOption
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.OrganisationID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no organisation")
	}

	return claims, nil
}
