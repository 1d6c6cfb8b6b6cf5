package repository

import (
	"context"

	"github.com/St1cky1/user-service/internal/entity"
)

// IUserRepository - интерфейс для UserRepository
type IUserRepository interface {
	Create(ctx context.Context, user *entity.CreateUserRequest) (*entity.User, error)
	GetById(ctx context.Context, id int) (*entity.User, error)
	Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.User, error)
	List(ctx context.Context, skip, limit int) ([]entity.User, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int) error
	CreateMany(ctx context.Context, names []string) (int64, error)
}

// IUserAuditRepository - интерфейс для UserAuditRepository
type IUserAuditRepository interface {
	Create(ctx context.Context, audit *entity.UserAudit) error
	GetByUserId(ctx context.Context, userId int) ([]entity.UserAudit, error)
}
