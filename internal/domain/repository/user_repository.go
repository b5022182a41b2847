package repository

import (
	"context"

	"bazaarlink/internal/domain/entity"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
