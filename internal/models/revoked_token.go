package models

import "time"

// RevokedToken stores the SHA-256 hash of a blacklisted refresh token.
// Rows become irrelevant once ExpiresAt passes, since the token itself
// would no longer validate anyway.
type RevokedToken struct {
	Base
	TokenHash string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}
