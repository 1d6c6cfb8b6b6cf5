package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/St1cky1/user-service/internal/repository"
)

// Базовый набор пользователей. Дубликаты при повторном запуске
// не проверяем - сидер не идемпотентный, и это ожидаемо.
var seedNames = []string{
	"Alice Johnson",
	"Bob Smith",
	"Charlie Brown",
	"Diana Prince",
	"Eve Adams",
	"Frank Miller",
	"Grace Hopper",
	"Hank Pym",
	"Ivy League",
	"Jack Black",
	"Kathy Sierra",
	"Liam Neeson",
}

type Seeder struct {
	userRepo repository.IUserRepository
}

func NewSeeder(userRepo repository.IUserRepository) *Seeder {
	return &Seeder{
		userRepo: userRepo,
	}
}

// Seed вставляет базовых пользователей одним батчем, без картинок
func (s *Seeder) Seed(ctx context.Context) error {
	log.Println("Заполняем базу тестовыми пользователями...")

	inserted, err := s.userRepo.CreateMany(ctx, seedNames)
	if err != nil {
		return fmt.Errorf("ошибка сидирования: %w", err)
	}

	log.Printf("✅ Добавлено пользователей: %d", inserted)
	return nil
}
