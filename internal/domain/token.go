package domain

import (
	"context"
	"time"
)

// Token is an opaque bearer credential. The value carries no claims;
// validation is a store lookup plus a check on the owner's state.
type Token struct {
	Value     string    `gorm:"primaryKey;size:128" json:"value"`
	UserID    string    `gorm:"index;size:36;not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Token) TableName() string { return "auth_tokens" }

type TokenRepository interface {
	Create(ctx context.Context, t *Token) error
	FindByValue(ctx context.Context, value string) (*Token, error)
	DeleteByUserID(ctx context.Context, userID string) error
}
