// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"context"
	"strconv"
	"time"

	"bulletin/app/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidToken is returned for tokens that are malformed, expired or badly signed.
	ErrInvalidToken = errors.New("invalid token")
	// ErrBadCredentials is returned when a password does not match its hash.
	ErrBadCredentials = errors.New("bad credentials")
)

// Claims is the payload carried by a bulletin token.
type Claims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Token is a signed bearer token and the time it stops being accepted.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenIssuer signs and parses HS256 tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenIssuer creates a TokenIssuer. A non-positive ttl defaults to one hour.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, issuer: "bulletin"}
}

// Issue signs a token for user.
func (i *TokenIssuer) Issue(user *models.User) (*Token, error) {
	now := time.Now()
	expires := now.Add(i.ttl)
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign token")
	}
	return &Token{Token: signed, ExpiresAt: expires.Truncate(time.Second)}, nil
}

// Parse verifies tokenString and returns the user it was issued to.
func (i *TokenIssuer) Parse(tokenString string) (*models.User, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.WithMessage(ErrInvalidToken, err.Error())
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil || id <= 0 {
		return nil, errors.WithMessage(ErrInvalidToken, "subject is not a user id")
	}
	if claims.Role != models.RoleUser && claims.Role != models.RoleAdmin {
		return nil, errors.WithMessage(ErrInvalidToken, "unknown role")
	}
	return &models.User{ID: id, Username: claims.Username, Role: claims.Role}, nil
}

// HashPassword hashes password with bcrypt's default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	return string(hash), nil
}

// CheckPassword compares password against a hash from HashPassword.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrBadCredentials
	}
	return nil
}

type contextKey struct{}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the authenticated user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(contextKey{}).(*models.User)
	return user
}
