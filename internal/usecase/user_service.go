package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/St1cky1/user-service/internal/entity"
	"github.com/St1cky1/user-service/internal/repository"
	"golang.org/x/sync/errgroup"
)

// RabbitMQPublisher интерфейс для публикации в RabbitMQ
type RabbitMQPublisher interface {
	PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error
}

type UserService struct {
	userRepo  repository.IUserRepository
	auditRepo repository.IUserAuditRepository
	rabbitMQ  RabbitMQPublisher
}

func NewUserService(
	userRepo repository.IUserRepository,
	auditRepo repository.IUserAuditRepository,
	rabbitMQ RabbitMQPublisher,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
		rabbitMQ:  rabbitMQ,
	}
}

// ListUsers отдает страницу пользователей. Страницу и общее количество
// забираем из БД параллельно, между ними нет зависимости.
func (s *UserService) ListUsers(ctx context.Context, page, limit int) (*entity.ListUsersResponse, error) {
	skip := (page - 1) * limit

	var (
		users []entity.User
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.userRepo.List(gctx, skip, limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.userRepo.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	shaped := make([]entity.UserResponse, 0, len(users))
	for i := range users {
		shaped = append(shaped, *shapeUser(&users[i]))
	}

	return &entity.ListUsersResponse{
		Users:      shaped,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// CreateUser создает пользователя, имя обрезаем от пробелов
func (s *UserService) CreateUser(ctx context.Context, name string, image []byte) (*entity.UserResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, entity.ErrNameRequired
	}

	req := &entity.CreateUserRequest{
		Name:  name,
		Image: encodeImage(image),
	}

	user, err := s.userRepo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.sendAuditMessage(entity.ActionCreate, user.ID, nil, user)

	return shapeUser(user), nil
}

// GetUser получает пользователя по ID
func (s *UserService) GetUser(ctx context.Context, userID int) (*entity.UserResponse, error) {
	user, err := s.userRepo.GetById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUserNotFound
	}

	return shapeUser(user), nil
}

// UpdateUser обновляет любое подмножество полей. Имя здесь намеренно
// не валидируем - проверка пустоты есть только на создании.
func (s *UserService) UpdateUser(ctx context.Context, userID int, name *string, image []byte) (*entity.User, error) {
	// 1. Получаем текущее состояние (для аудита)
	oldUser, err := s.userRepo.GetById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if oldUser == nil {
		return nil, entity.ErrUserNotFound
	}

	// 2. Подготавливаем обновления
	updates := make(map[string]interface{})
	if name != nil {
		updates["name"] = *name
	}
	if encoded := encodeImage(image); encoded != nil {
		updates["image"] = *encoded
	}

	// 3. Обновляем; пустой набор полей тоже валиден, просто вернется запись
	updatedUser, err := s.userRepo.Update(ctx, userID, updates)
	if err != nil {
		return nil, err
	}
	if updatedUser == nil {
		return nil, entity.ErrUserNotFound
	}

	// 4. Асинхронно отправляем аудит
	s.sendAuditMessage(entity.ActionUpdate, userID, oldUser, updatedUser)

	return updatedUser, nil
}

// DeleteUser удаляет пользователя навсегда
func (s *UserService) DeleteUser(ctx context.Context, userID int) error {
	// 1. Получаем пользователя (для аудита)
	user, err := s.userRepo.GetById(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return entity.ErrUserNotFound
	}

	// 2. Удаляем
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	// 3. Асинхронно отправляем аудит
	s.sendAuditMessage(entity.ActionDelete, userID, user, nil)

	return nil
}

// GetImage отдает картинку пользователя как сырые байты
func (s *UserService) GetImage(ctx context.Context, userID int) ([]byte, error) {
	user, err := s.userRepo.GetById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Image == nil {
		return nil, entity.ErrImageNotFound
	}

	data, err := base64.StdEncoding.DecodeString(*user.Image)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	return data, nil
}

// UpdateImage заменяет только картинку пользователя
func (s *UserService) UpdateImage(ctx context.Context, userID int, image []byte) (*entity.UpdateImageResponse, error) {
	if len(image) == 0 {
		return nil, entity.ErrNoImage
	}

	oldUser, err := s.userRepo.GetById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if oldUser == nil {
		return nil, entity.ErrUserNotFound
	}

	encoded := encodeImage(image)
	user, err := s.userRepo.Update(ctx, userID, map[string]interface{}{"image": *encoded})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUserNotFound
	}

	s.sendAuditMessage(entity.ActionUpdate, userID, oldUser, user)

	// саму картинку назад не отдаем
	return &entity.UpdateImageResponse{
		Message: "Image updated successfully",
		User: entity.UserSummary{
			ID:   user.ID,
			Name: user.Name,
		},
	}, nil
}

// GetAuditTrail отдает историю изменений пользователя
func (s *UserService) GetAuditTrail(ctx context.Context, userID int) ([]entity.UserAudit, error) {
	user, err := s.userRepo.GetById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUserNotFound
	}

	return s.auditRepo.GetByUserId(ctx, userID)
}

// shapeUser переводит внутреннее поле image в наружное imageBase64
func shapeUser(u *entity.User) *entity.UserResponse {
	resp := &entity.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Image != nil {
		resp.ImageBase64 = u.Image
	}
	return resp
}

func encodeImage(image []byte) *string {
	if image == nil {
		return nil
	}
	encoded := base64.StdEncoding.EncodeToString(image)
	return &encoded
}

func hasImage(u *entity.User) bool {
	return u != nil && u.Image != nil
}

func auditValues(u *entity.User) map[string]interface{} {
	return map[string]interface{}{
		"name":      u.Name,
		"has_image": hasImage(u),
	}
}

// Вспомогательный метод для отправки аудита
func (s *UserService) sendAuditMessage(
	action entity.ActionType,
	userID int,
	oldUser *entity.User,
	newUser *entity.User,
) {
	auditMsg := &entity.AuditMessage{
		Action:    action,
		EntityID:  userID,
		Timestamp: time.Now(),
	}

	// Заполняем данные в зависимости от действия
	switch action {
	case entity.ActionCreate:
		if newUser != nil {
			auditMsg.NewValues = auditValues(newUser)
		}

	case entity.ActionUpdate:
		if oldUser != nil && newUser != nil {
			auditMsg.OldValues = auditValues(oldUser)
			auditMsg.NewValues = auditValues(newUser)

			// Вычисляем изменения
			changes := make(map[string]interface{})
			if oldUser.Name != newUser.Name {
				changes["name"] = map[string]interface{}{"old": oldUser.Name, "new": newUser.Name}
			}
			oldImage, newImage := "", ""
			if oldUser.Image != nil {
				oldImage = *oldUser.Image
			}
			if newUser.Image != nil {
				newImage = *newUser.Image
			}
			if oldImage != newImage {
				changes["image"] = map[string]interface{}{"old": hasImage(oldUser), "new": hasImage(newUser)}
			}
			auditMsg.Changes = changes
		}

	case entity.ActionDelete:
		if oldUser != nil {
			auditMsg.OldValues = auditValues(oldUser)
		}
	}

	// Асинхронная отправка в RabbitMQ, запрос из-за аудита не падает
	go func() {
		if err := s.rabbitMQ.PublishAuditMessage(context.Background(), auditMsg); err != nil {
			log.Printf("❌ Ошибка отправки аудита в RabbitMQ: %v", err)
		}
	}()
}
