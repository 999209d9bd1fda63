package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// OverloadClaims represents the custom JWT claims issued after login.
type OverloadClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
