// Package auth verifies identity tokens issued by the external identity
// provider. Tokens are HS256 JWTs signed with a shared secret.
package auth

import "github.com/golang-jwt/jwt/v5"

// RoleAdmin grants moderation and catalog editing rights.
const RoleAdmin = "admin"

// Claims are the claims read from an identity token.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the verified caller of a request.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
	IsAdmin     bool
}
