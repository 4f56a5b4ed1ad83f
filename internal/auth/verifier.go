package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Supported signing algorithms.
const (
	AlgorithmHS256 = "HS256"
	AlgorithmRS256 = "RS256"
)

// Scopes.
const (
	ScopeRead    = "read"
	ScopeControl = "control"
)

// ErrUnauthenticated means the request carried no usable token.
var ErrUnauthenticated = errors.New("authentication required")

// ErrForbidden means the token lacks the scope the action needs.
var ErrForbidden = errors.New("insufficient permissions")

// Claims are the verified token claims the gateway uses.
type Claims struct {
	Subject string
	Scopes  []string
}

// HasScope reports whether the claims grant scope. control implies read.
func (c *Claims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	for _, s := range c.Scopes {
		if s == scope || (scope == ScopeRead && s == ScopeControl) {
			return true
		}
	}
	return false
}

// VerifierConfig holds configuration for token verification.
type VerifierConfig struct {
	Algorithm    string // "HS256" or "RS256"
	SecretKey    string
	PublicKeyPEM string
}

// Verifier checks token signatures and extracts claims.
type Verifier struct {
	config    VerifierConfig
	publicKey *rsa.PublicKey
}

// NewVerifier creates a verifier for the configured algorithm.
func NewVerifier(config VerifierConfig) (*Verifier, error) {
	v := &Verifier{config: config}

	switch config.Algorithm {
	case AlgorithmHS256:
		if config.SecretKey == "" {
			return nil, fmt.Errorf("HS256 requires secret key")
		}
	case AlgorithmRS256:
		if config.PublicKeyPEM == "" {
			return nil, fmt.Errorf("RS256 requires a PEM public key")
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(config.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to load public key from PEM: %w", err)
		}
		v.publicKey = key
	default:
		return nil, fmt.Errorf("unsupported algorithm: %s", config.Algorithm)
	}

	return v, nil
}

// VerifyToken verifies tokenString and returns its claims.
func (v *Verifier) VerifyToken(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc,
		jwt.WithValidMethods([]string{v.config.Algorithm}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return extractClaims(claims)
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	if v.config.Algorithm == AlgorithmRS256 {
		return v.publicKey, nil
	}
	return []byte(v.config.SecretKey), nil
}

// extractClaims reads sub plus either a "scopes" array or a space-separated
// "scope" string.
func extractClaims(claims jwt.MapClaims) (*Claims, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("missing or invalid 'sub' claim")
	}

	var scopes []string
	switch val := claims["scopes"].(type) {
	case []interface{}:
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("invalid scopes claim: not a string")
			}
			scopes = append(scopes, s)
		}
	case nil:
		if s, ok := claims["scope"].(string); ok {
			scopes = strings.Fields(s)
		}
	default:
		return nil, fmt.Errorf("invalid scopes claim: not a string array")
	}

	if len(scopes) == 0 {
		return nil, fmt.Errorf("missing scopes")
	}
	for _, s := range scopes {
		if s != ScopeRead && s != ScopeControl {
			return nil, fmt.Errorf("invalid scope: %s", s)
		}
	}

	return &Claims{Subject: sub, Scopes: scopes}, nil
}
