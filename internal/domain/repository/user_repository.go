package repository

import (
	"context"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// UserRepository lectura de usuarios (la emisión de identidades es externa).
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
