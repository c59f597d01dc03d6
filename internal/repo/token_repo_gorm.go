package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-account-service/internal/domain"
)

type TokenRepo struct{ db *gorm.DB }

func NewTokenRepo(db *gorm.DB) *TokenRepo { return &TokenRepo{db: db} }

func (r *TokenRepo) Create(ctx context.Context, t *domain.Token) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TokenRepo) FindByValue(ctx context.Context, value string) (*domain.Token, error) {
	var t domain.Token
	err := r.db.WithContext(ctx).First(&t, "value = ?", value).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Token{}).Error
}
