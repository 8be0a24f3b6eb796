package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims is the payload of tokens issued by the external identity
// provider: a verified display name and email. Everything else (degree,
// role) is resolved against the student directory per request.
type IdentityClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Identity is the resolved session identity used by services.
type Identity struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Degree Degree `json:"degree"`
	Role   Role   `json:"role"`
}
