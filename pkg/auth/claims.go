package auth

import "github.com/golang-jwt/jwt/v5"

// AdminClaims are the JWT claims minted for a logged-in administrator.
type AdminClaims struct {
	AdminID int64  `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}
