package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	OrgID   uuid.UUID
	OrgType enums.OrgType
	Role    enums.Role
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID  uuid.UUID     `json:"user_id"`
	OrgID   uuid.UUID     `json:"org_id"`
	OrgType enums.OrgType `json:"org_type"`
	Role    enums.Role    `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token belongs to a platform admin.
func (c AccessTokenClaims) IsAdmin() bool {
	return c.Role == enums.RoleAdmin
}
