package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
)

var (
	// ErrMissingToken is returned when the request carries no bearer token
	ErrMissingToken = errors.New("missing bearer token")

	// ErrInvalidToken is returned for tokens that fail signature or claim checks
	ErrInvalidToken = errors.New("invalid token")
)

const authContextKey = "auth"

// Claims carried by session tokens. Subject is the user ID.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier decodes HS256 session tokens into an AuthContext
type TokenVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewTokenVerifier creates a verifier for the shared secret
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for the given identity. Used by tooling and tests.
func (v *TokenVerifier) Issue(userID string, role entity.Role, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the token and resolves the caller's role once
func (v *TokenVerifier) Verify(token string) (entity.AuthContext, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return entity.AuthContext{}, entity.ErrSessionExpired
		}
		return entity.AuthContext{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return entity.AuthContext{}, ErrInvalidToken
	}

	role, err := entity.ParseRole(claims.Role)
	if err != nil {
		return entity.AuthContext{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return entity.AuthContext{
		Token:     token,
		UserID:    claims.Subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// authMiddleware rejects requests without a valid session token and stores the
// resolved AuthContext for handlers.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Error: err.Error()})
			return
		}

		auth, err := s.verifier.Verify(token)
		if err != nil {
			s.logger.Info("Rejected session token", "path", c.Request.URL.Path, "error", err)
			msg := "invalid token"
			if errors.Is(err, entity.ErrSessionExpired) {
				msg = "session expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Error: msg})
			return
		}

		c.Set(authContextKey, auth)
		c.Next()
	}
}

func authFrom(c *gin.Context) entity.AuthContext {
	if v, ok := c.Get(authContextKey); ok {
		if auth, ok := v.(entity.AuthContext); ok {
			return auth
		}
	}
	return entity.AuthContext{}
}
