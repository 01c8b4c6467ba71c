package handlers

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// ErrInvalidFormToken means a submitted csrf_token failed verification.
var ErrInvalidFormToken = errors.New("invalid form token")

// Guard checks the single admin password against its configured hash.
// The plaintext is never stored or compared directly.
type Guard struct {
	check func(password []byte) bool
}

// NewGuard parses encoded, which is a bcrypt hash or a werkzeug
// pbkdf2/scrypt hash ("method$salt$hexdigest").
func NewGuard(encoded string) (*Guard, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "$2") {
		hashed := []byte(encoded)
		if _, err := bcrypt.Cost(hashed); err != nil {
			return nil, fmt.Errorf("bcrypt hash: %w", err)
		}
		return &Guard{check: func(pw []byte) bool {
			return bcrypt.CompareHashAndPassword(hashed, pw) == nil
		}}, nil
	}

	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 {
		return nil, errors.New("unrecognised password hash format")
	}
	method, salt := parts[0], []byte(parts[1])
	want, err := hex.DecodeString(parts[2])
	if err != nil || len(want) == 0 {
		return nil, errors.New("password hash digest is not hex")
	}

	derive, err := werkzeugKDF(method, len(want))
	if err != nil {
		return nil, err
	}
	return &Guard{check: func(pw []byte) bool {
		got, err := derive(pw, salt)
		if err != nil {
			return false
		}
		return subtle.ConstantTimeCompare(got, want) == 1
	}}, nil
}

// Check reports whether password matches the configured hash.
func (g *Guard) Check(password string) bool {
	if password == "" {
		return false
	}
	return g.check([]byte(password))
}

// werkzeugKDF understands "pbkdf2:<hash>[:<iterations>]" and
// "scrypt[:<n>:<r>:<p>]" as written by werkzeug's generate_password_hash.
func werkzeugKDF(method string, keyLen int) (func(pw, salt []byte) ([]byte, error), error) {
	args := strings.Split(method, ":")
	switch args[0] {
	case "pbkdf2":
		newHash := sha256.New
		iterations := 600000
		if len(args) > 1 && args[1] != "" {
			h, err := hashByName(args[1])
			if err != nil {
				return nil, err
			}
			newHash = h
		}
		if len(args) > 2 {
			n, err := strconv.Atoi(args[2])
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("pbkdf2 iterations %q", args[2])
			}
			iterations = n
		}
		return func(pw, salt []byte) ([]byte, error) {
			return pbkdf2.Key(pw, salt, iterations, keyLen, newHash), nil
		}, nil
	case "scrypt":
		n, r, p := 1<<15, 8, 1
		if len(args) == 4 {
			vals := make([]int, 3)
			for i, a := range args[1:] {
				v, err := strconv.Atoi(a)
				if err != nil || v <= 0 {
					return nil, fmt.Errorf("scrypt parameter %q", a)
				}
				vals[i] = v
			}
			n, r, p = vals[0], vals[1], vals[2]
		} else if len(args) != 1 {
			return nil, fmt.Errorf("scrypt method %q", method)
		}
		return func(pw, salt []byte) ([]byte, error) {
			return scrypt.Key(pw, salt, n, r, p, keyLen)
		}, nil
	}
	return nil, fmt.Errorf("unsupported password hash method %q", args[0])
}

func hashByName(name string) (func() hash.Hash, error) {
	switch name {
	case "sha1":
		return sha1.New, nil
	case "sha256":
		return sha256.New, nil
	case "sha512":
		return sha512.New, nil
	}
	return nil, fmt.Errorf("unsupported pbkdf2 hash %q", name)
}

// FormTokens issues and verifies the csrf_token hidden field. A token is an
// HS256 JWT naming the form it was issued for and bound to the per-browser
// nonce kept in the session cookie.
type FormTokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type formClaims struct {
	Form string `json:"form"`
	jwt.RegisteredClaims
}

// NewFormTokens signs with secret. Tokens live for ttl (one hour if zero).
func NewFormTokens(secret string, ttl time.Duration, now func() time.Time) *FormTokens {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &FormTokens{key: []byte(secret), ttl: ttl, now: now}
}

// Issue returns a token for form, bound to nonce.
func (t *FormTokens) Issue(nonce, form string) (string, error) {
	now := t.now()
	claims := &formClaims{
		Form: form,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        nonce,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			Issuer:    "portfolio",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
}

// Verify checks signature, expiry, form name and nonce binding.
func (t *FormTokens) Verify(token, nonce, form string) error {
	if token == "" || nonce == "" {
		return ErrInvalidFormToken
	}
	claims := &formClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer("portfolio"),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !tok.Valid {
		return ErrInvalidFormToken
	}
	if claims.Form != form || subtle.ConstantTimeCompare([]byte(claims.ID), []byte(nonce)) != 1 {
		return ErrInvalidFormToken
	}
	return nil
}
