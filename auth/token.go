// ABOUTME: JWT issuing and verification for the HTTP API
// ABOUTME: Wraps jwtauth with the user claims the API needs

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/harperreed/commtrack/models"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type TokenAuth struct {
	ja  *jwtauth.JWTAuth
	ttl time.Duration
}

func NewTokenAuth(secret string, ttl time.Duration) *TokenAuth {
	return &TokenAuth{
		ja:  jwtauth.New("HS256", []byte(secret), nil, jwt.WithAcceptableSkew(30*time.Second)),
		ttl: ttl,
	}
}

// JWTAuth exposes the underlying verifier for router middleware.
func (t *TokenAuth) JWTAuth() *jwtauth.JWTAuth {
	return t.ja
}

// Issue signs a token for user and returns it with its expiry.
func (t *TokenAuth) Issue(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(t.ttl)
	claims := map[string]interface{}{
		"sub":   user.ID.String(),
		"name":  user.Name,
		"email": user.Email,
		"role":  string(user.Role),
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiry(claims, expiresAt)

	_, tokenString, err := t.ja.Encode(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// Verify checks signature and expiry and returns the token's user.
func (t *TokenAuth) Verify(tokenString string) (*models.User, error) {
	token, err := jwtauth.VerifyToken(t.ja, tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	return UserFromClaims(claims)
}

// UserFromClaims rebuilds the user carried by a verified token.
func UserFromClaims(claims map[string]interface{}) (*models.User, error) {
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject claim", models.ErrUnauthorized)
	}

	role, _ := claims["role"].(string)
	user := &models.User{ID: id, Role: models.Role(role)}
	if !user.Role.Valid() {
		return nil, fmt.Errorf("%w: bad role claim", models.ErrUnauthorized)
	}
	user.Name, _ = claims["name"].(string)
	user.Email, _ = claims["email"].(string)
	return user, nil
}
