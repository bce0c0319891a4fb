package auth

import (
	"fmt"
	"time"

	"github.com/Daskott/vitals/server/auth/key"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultHashCost is the bcrypt cost used when none is configured.
	DefaultHashCost = 14

	// MaxPasswordLength is the longest plaintext bcrypt will accept.
	MaxPasswordLength = 72

	// TokenTTL is the fixed lifetime of a session token.
	TokenTTL = 7 * 24 * time.Hour

	signingMethod = "RS256"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)

type VitalsTokenClaims struct {
	jwt.StandardClaims
}

// Email returns the identity asserted by the token.
func (claims *VitalsTokenClaims) Email() string {
	return claims.Subject
}

// ---------------------------------------------------------------------------------//
// Password hashing
// --------------------------------------------------------------------------------//

type Hasher struct {
	cost int
}

// NewHasher returns a bcrypt hasher. Costs outside bcrypt's range fall back to DefaultHashCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted bcrypt digest of password. The salt is embedded in the digest.
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(bytes), nil
}

// Verify reports whether password matches digest. A malformed digest never matches.
// Passwords longer than MaxPasswordLength never match since bcrypt ignores the extra bytes.
func (h *Hasher) Verify(password, digest string) bool {
	if len(password) > MaxPasswordLength {
		return false
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	return err == nil
}

// ---------------------------------------------------------------------------------//
// Session tokens
// --------------------------------------------------------------------------------//

type SessionManager struct {
	keyPair *key.KeyPair
	now     func() time.Time
}

func NewSessionManager(keyPair *key.KeyPair) *SessionManager {
	return &SessionManager{keyPair: keyPair, now: time.Now}
}

// WithClock returns a copy of the manager that reads time from now.
func (sm *SessionManager) WithClock(now func() time.Time) *SessionManager {
	return &SessionManager{keyPair: sm.keyPair, now: now}
}

// Issue signs a token for email that expires TokenTTL from now.
func (sm *SessionManager) Issue(email string) (string, error) {
	issuedAt := sm.now()
	claims := VitalsTokenClaims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   email,
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: issuedAt.Add(TokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.GetSigningMethod(signingMethod), claims)
	token.Header["kid"] = sm.keyPair.Kid

	tokenString, err := token.SignedString(sm.keyPair.PrivateKey)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}

	return tokenString, nil
}

// Verify checks the token signature, then its expiry, and returns the token claims.
func (sm *SessionManager) Verify(tokenString string) (*VitalsTokenClaims, error) {
	// Expiry is checked below against sm.now instead of jwt.TimeFunc
	parser := &jwt.Parser{ValidMethods: []string{signingMethod}, SkipClaimsValidation: true}

	token, err := parser.ParseWithClaims(tokenString, &VitalsTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return sm.keyPair.PublicKey, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	tokenClaims, ok := token.Claims.(*VitalsTokenClaims)
	if !ok || tokenClaims.Subject == "" || tokenClaims.ExpiresAt == 0 {
		return nil, ErrInvalidToken
	}

	if !sm.now().Before(time.Unix(tokenClaims.ExpiresAt, 0)) {
		return nil, ErrExpiredToken
	}

	return tokenClaims, nil
}
