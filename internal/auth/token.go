package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	PurposeSession       = "session"
	PurposePasswordReset = "password_reset"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	Role        string `json:"role,omitempty"`
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"fp,omitempty"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, sessionTTL, resetTTL time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), sessionTTL: sessionTTL, resetTTL: resetTTL, now: time.Now}
}

func (i *Issuer) IssueSession(userID, email, role string) (string, error) {
	return i.sign(Claims{UserID: userID, Email: email, Role: role, Purpose: PurposeSession}, i.sessionTTL)
}

// IssueReset binds the token to the current password hash, so it stops
// working once the password changes.
func (i *Issuer) IssueReset(userID, email, passwordHash string) (string, error) {
	return i.sign(Claims{UserID: userID, Email: email, Purpose: PurposePasswordReset, Fingerprint: Fingerprint(passwordHash)}, i.resetTTL)
}

func (i *Issuer) ParseSession(token string) (*Claims, error) {
	return i.parse(token, PurposeSession)
}

func (i *Issuer) ParseReset(token string) (*Claims, error) {
	return i.parse(token, PurposePasswordReset)
}

func (i *Issuer) sign(c Claims, ttl time.Duration) (string, error) {
	now := i.now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   c.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
}

func (i *Issuer) parse(token, purpose string) (*Claims, error) {
	var c Claims
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	_, err := parser.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Purpose != purpose || c.UserID == "" {
		return nil, ErrInvalidToken
	}
	return &c, nil
}

func Fingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}
