package auth

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification errors.
var (
	ErrMissingSecret = errors.New("jwt secret is not configured")
	ErrInvalidToken  = errors.New("invalid token")
	ErrNoSubject     = errors.New("token has no subject")
)

// Options configures a Verifier.
type Options struct {
	Secret      string
	Issuer      string   // checked when set
	Audience    string   // checked when set
	AdminEmails []string // lower-cased emails that are always admins
	Leeway      time.Duration
}

// Verifier validates identity tokens and maps them to identities.
type Verifier struct {
	secret      []byte
	parser      *jwt.Parser
	adminEmails []string
}

// NewVerifier creates a verifier. The secret is required.
func NewVerifier(opts Options) (*Verifier, error) {
	if opts.Secret == "" {
		return nil, ErrMissingSecret
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(opts.Leeway),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}

	admins := make([]string, 0, len(opts.AdminEmails))
	for _, e := range opts.AdminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins = append(admins, e)
		}
	}

	return &Verifier{
		secret:      []byte(opts.Secret),
		parser:      jwt.NewParser(parserOpts...),
		adminEmails: admins,
	}, nil
}

// Verify parses and validates tokenString and returns the caller identity.
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return nil, ErrNoSubject
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	return &Identity{
		UserID:      subject,
		Email:       email,
		DisplayName: strings.TrimSpace(claims.Name),
		IsAdmin:     strings.EqualFold(claims.Role, RoleAdmin) || (email != "" && slices.Contains(v.adminEmails, email)),
	}, nil
}

// Sign issues an HS256 token for claims. The server never issues tokens in
// production; this serves tests and local tooling.
func (v *Verifier) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
