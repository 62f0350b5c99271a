package auth

import (
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inkwell-labs/blog-core/internal/apperr"
)

type Config struct {
	Secret    []byte
	AccessTTL time.Duration
}

// ConfigFromEnv reads token config from env vars. JWT_SECRET has a
// development-only default; set it in any real deployment.
func ConfigFromEnv() Config {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret"
	}
	ttl := 60 * time.Minute
	if v := os.Getenv("ACCESS_TOKEN_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = time.Duration(n) * time.Minute
		}
	}
	return Config{Secret: []byte(secret), AccessTTL: ttl}
}

// Claims carried by an access token. Subject is the user id in decimal.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenService issues and verifies HS256 access tokens.
type TokenService struct {
	cfg Config
}

func NewTokenService(cfg Config) *TokenService {
	return &TokenService{cfg: cfg}
}

var errInvalidToken = apperr.New(apperr.KindUnauthorized, "invalid token")

// Issue signs an access token for the given principal.
func (s *TokenService) Issue(p Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
		Username: p.Username,
		Email:    p.Email,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.cfg.Secret)
}

// Parse verifies a token string and returns the principal it encodes.
func (s *TokenService) Parse(tokenString string) (Principal, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return Principal{}, errInvalidToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Principal{}, errInvalidToken
	}
	return Principal{ID: id, Username: claims.Username, Email: claims.Email}, nil
}
