package repository

import (
	"context"

	"github.com/tu-usuario/retail-backoffice/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (capa de auth).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByEmailAndCompany(ctx context.Context, email, companyID string) (*entity.User, error)
}
