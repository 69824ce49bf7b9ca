package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dragoncontacts/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Codec converts sessions to signed HS256 tokens and back.
type Codec struct {
	key []byte
}

func NewCodec(key []byte) (*Codec, error) {
	if len(key) == 0 {
		return nil, errors.New("session: empty signing key")
	}
	return &Codec{key: key}, nil
}

// Encode signs s. issuedAt is recorded as the iat claim.
func (c *Codec) Encode(s Session, issuedAt time.Time) (string, error) {
	if s.SubjectID == "" {
		return "", fmt.Errorf("%w: empty subject", common.ErrInvalidToken)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   s.SubjectID,
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
	})
	return token.SignedString(c.key)
}

// Decode verifies the signature of token and returns the session it carries.
// Expiry is not checked here; use Session.IsValid with the caller's clock.
func (c *Codec) Decode(token string) (Session, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return Session{}, fmt.Errorf("%w: missing claims", common.ErrInvalidToken)
	}

	return Session{SubjectID: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}
