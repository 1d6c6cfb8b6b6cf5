package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/St1cky1/user-service/internal/entity"
	"github.com/St1cky1/user-service/internal/repository"
)

// MockUserRepository - мок для IUserRepository
type MockUserRepository struct {
	CreateFunc     func(ctx context.Context, user *entity.CreateUserRequest) (*entity.User, error)
	GetByIdFunc    func(ctx context.Context, id int) (*entity.User, error)
	UpdateFunc     func(ctx context.Context, id int, updates map[string]interface{}) (*entity.User, error)
	ListFunc       func(ctx context.Context, skip, limit int) ([]entity.User, error)
	CountFunc      func(ctx context.Context) (int, error)
	DeleteFunc     func(ctx context.Context, id int) error
	CreateManyFunc func(ctx context.Context, names []string) (int64, error)
}

var _ repository.IUserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, user *entity.CreateUserRequest) (*entity.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, nil
}

func (m *MockUserRepository) GetById(ctx context.Context, id int) (*entity.User, error) {
	if m.GetByIdFunc != nil {
		return m.GetByIdFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, updates)
	}
	return nil, nil
}

func (m *MockUserRepository) List(ctx context.Context, skip, limit int) ([]entity.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, skip, limit)
	}
	return nil, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) CreateMany(ctx context.Context, names []string) (int64, error) {
	if m.CreateManyFunc != nil {
		return m.CreateManyFunc(ctx, names)
	}
	return 0, nil
}

// MockUserAuditRepository - мок для IUserAuditRepository
type MockUserAuditRepository struct {
	CreateFunc      func(ctx context.Context, audit *entity.UserAudit) error
	GetByUserIdFunc func(ctx context.Context, userId int) ([]entity.UserAudit, error)
}

var _ repository.IUserAuditRepository = (*MockUserAuditRepository)(nil)

func (m *MockUserAuditRepository) Create(ctx context.Context, audit *entity.UserAudit) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, audit)
	}
	return nil
}

func (m *MockUserAuditRepository) GetByUserId(ctx context.Context, userId int) ([]entity.UserAudit, error) {
	if m.GetByUserIdFunc != nil {
		return m.GetByUserIdFunc(ctx, userId)
	}
	return nil, nil
}

// MockRabbitMQPublisher - мок для RabbitMQPublisher
type MockRabbitMQPublisher struct {
	PublishAuditMessageFunc func(ctx context.Context, message *entity.AuditMessage) error
}

func (m *MockRabbitMQPublisher) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	if m.PublishAuditMessageFunc != nil {
		return m.PublishAuditMessageFunc(ctx, message)
	}
	return nil
}

func newTestService(userRepo *MockUserRepository) *UserService {
	return NewUserService(userRepo, &MockUserAuditRepository{}, &MockRabbitMQPublisher{})
}

// Tests

func TestListUsersPagination(t *testing.T) {
	ctx := context.Background()

	var gotSkip, gotLimit int
	mockUserRepo := &MockUserRepository{
		ListFunc: func(ctx context.Context, skip, limit int) ([]entity.User, error) {
			gotSkip, gotLimit = skip, limit
			users := make([]entity.User, 5)
			for i := range users {
				users[i] = entity.User{ID: skip + i + 1, Name: "User"}
			}
			return users, nil
		},
		CountFunc: func(ctx context.Context) (int, error) {
			return 25, nil
		},
	}

	service := newTestService(mockUserRepo)

	result, err := service.ListUsers(ctx, 3, 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotSkip != 20 || gotLimit != 10 {
		t.Errorf("Expected skip=20 limit=10, got skip=%d limit=%d", gotSkip, gotLimit)
	}

	if result.Total != 25 {
		t.Errorf("Expected total 25, got %d", result.Total)
	}

	if result.TotalPages != 3 {
		t.Errorf("Expected totalPages 3, got %d", result.TotalPages)
	}

	if len(result.Users) > result.Limit {
		t.Errorf("Expected at most %d users, got %d", result.Limit, len(result.Users))
	}

	if result.Page != 3 || result.Limit != 10 {
		t.Errorf("Expected page=3 limit=10 echoed back, got page=%d limit=%d", result.Page, result.Limit)
	}
}

func TestListUsersTotalPagesRoundsUp(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := &MockUserRepository{
		CountFunc: func(ctx context.Context) (int, error) {
			return 21, nil
		},
	}

	service := newTestService(mockUserRepo)

	result, err := service.ListUsers(ctx, 1, 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.TotalPages != 3 {
		t.Errorf("Expected totalPages 3 for 21/10, got %d", result.TotalPages)
	}
}

func TestListUsersShapesImage(t *testing.T) {
	ctx := context.Background()

	encoded := base64.StdEncoding.EncodeToString([]byte("picture-bytes"))
	mockUserRepo := &MockUserRepository{
		ListFunc: func(ctx context.Context, skip, limit int) ([]entity.User, error) {
			return []entity.User{
				{ID: 1, Name: "Alice Johnson", Image: &encoded},
				{ID: 2, Name: "Bob Smith"},
			}, nil
		},
		CountFunc: func(ctx context.Context) (int, error) {
			return 2, nil
		},
	}

	service := newTestService(mockUserRepo)

	result, err := service.ListUsers(ctx, 1, 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Users[0].ImageBase64 == nil || *result.Users[0].ImageBase64 != encoded {
		t.Errorf("Expected imageBase64 %q, got %v", encoded, result.Users[0].ImageBase64)
	}

	if result.Users[1].ImageBase64 != nil {
		t.Errorf("Expected no imageBase64 for user without image, got %v", *result.Users[1].ImageBase64)
	}
}

func TestCreateUserTrimsName(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *entity.CreateUserRequest) (*entity.User, error) {
			return &entity.User{ID: 1, Name: user.Name, Image: user.Image, CreatedAt: time.Now(), UpdatedAt: time.Now()}, nil
		},
	}

	service := newTestService(mockUserRepo)

	result, err := service.CreateUser(ctx, "  Ada  ", nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Name != "Ada" {
		t.Errorf("Expected trimmed name %q, got %q", "Ada", result.Name)
	}

	if result.ImageBase64 != nil {
		t.Errorf("Expected no imageBase64, got %v", *result.ImageBase64)
	}
}

func TestCreateUserEmptyName(t *testing.T) {
	ctx := context.Background()

	created := false
	mockUserRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *entity.CreateUserRequest) (*entity.User, error) {
			created = true
			return &entity.User{ID: 1, Name: user.Name}, nil
		},
	}

	service := newTestService(mockUserRepo)

	result, err := service.CreateUser(ctx, "   ", nil)
	if err != entity.ErrNameRequired {
		t.Errorf("Expected ErrNameRequired, got %v", err)
	}

	if result != nil {
		t.Errorf("Expected nil user, got %v", result)
	}

	if created {
		t.Error("Expected no record to be created for empty name")
	}
}

func TestCreateUserImageRoundTrip(t *testing.T) {
	ctx := context.Background()

	imageBytes := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46}
	mockUserRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *entity.CreateUserRequest) (*entity.User, error) {
			return &entity.User{ID: 1, Name: user.Name, Image: user.Image}, nil
		},
	}

	service := newTestService(mockUserRepo)

	result, err := service.CreateUser(ctx, "Ada", imageBytes)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.ImageBase64 == nil {
		t.Fatal("Expected imageBase64 to be set")
	}

	decoded, err := base64.StdEncoding.DecodeString(*result.ImageBase64)
	if err != nil {
		t.Fatalf("Expected valid base64, got %v", err)
	}

	if !bytes.Equal(decoded, imageBytes) {
		t.Errorf("Expected decoded image %v, got %v", imageBytes, decoded)
	}
}

func TestGetUserNotFound(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := &MockUserRepository{
		GetByIdFunc: func(ctx context.Context, id int) (*entity.User, error) {
			return nil, nil // User not found
		},
	}

	service := newTestService(mockUserRepo)

	result, err := service.GetUser(ctx, 999)
	if err != entity.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}

	if result != nil {
		t.Errorf("Expected nil user, got %v", result)
	}
}

func TestUpdateUserNotFound(t *testing.T) {
	ctx := context.Background()

	updated := false
	mockUserRepo := &MockUserRepository{
		GetByIdFunc: func(ctx context.Context, id int) (*entity.User, error) {
			return nil, nil
		},
		UpdateFunc: func(ctx context.Context, id int, updates map[string]interface{}) (*entity.User, error) {
			updated = true
			return nil, nil
		},
	}

	service := newTestService(mockUserRepo)

	name := "New Name"
	result, err := service.UpdateUser(ctx, 999, &name, nil)
	if err != entity.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}

	if result != nil {
		t.Errorf("Expected nil user, got %v", result)
	}

	if updated {
		t.Error("Expected no update for missing user")
	}
}

func TestUpdateUserReplacesImage(t *testing.T) {
	ctx := context.Background()

	oldImage := base64.StdEncoding.EncodeToString([]byte("old"))
	var gotUpdates map[string]interface{}
	mockUserRepo := &MockUserRepository{
		GetByIdFunc: func(ctx context.Context, id int) (*entity.User, error) {
			return &entity.User{ID: 1, Name: "Ada", Image: &oldImage}, nil
		},
		UpdateFunc: func(ctx context.Context, id int, updates map[string]interface{}) (*entity.User, error) {
			gotUpdates = updates
			newImage := updates["image"].(string)
			return &entity.User{ID: 1, Name: "Ada", Image: &newImage}, nil
		},
	}

	service := newTestService(mockUserRepo)

	newBytes := []byte("new-picture")
	result, err := service.UpdateUser(ctx, 1, nil, newBytes)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, ok := gotUpdates["name"]; ok {
		t.Error("Expected name to be left untouched")
	}

	wantImage := base64.StdEncoding.EncodeToString(newBytes)
	if gotUpdates["image"] != wantImage {
		t.Errorf("Expected image update %q, got %v", wantImage, gotUpdates["image"])
	}

	if result.Image == nil || *result.Image != wantImage {
		t.Errorf("Expected stored image %q, got %v", wantImage, result.Image)
	}
}

func TestDeleteUserTwice(t *testing.T) {
	ctx := context.Background()

	users := map[int]*entity.User{
		1: {ID: 1, Name: "Ada"},
	}

	mockUserRepo := &MockUserRepository{
		GetByIdFunc: func(ctx context.Context, id int) (*entity.User, error) {
			return users[id], nil
		},
		DeleteFunc: func(ctx context.Context, id int) error {
			if _, ok := users[id]; !ok {
				return entity.ErrUserNotFound
			}
			delete(users, id)
			return nil
		},
	}

	service := newTestService(mockUserRepo)

	if err := service.DeleteUser(ctx, 1); err != nil {
		t.Fatalf("Expected first delete to succeed, got %v", err)
	}

	if err := service.DeleteUser(ctx, 1); err != entity.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound on second delete, got %v", err)
	}
}

func TestGetImageNoImage(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := &MockUserRepository{
		GetByIdFunc: func(ctx context.Context, id int) (*entity.User, error) {
			return &entity.User{ID: 1, Name: "Ada"}, nil // Без картинки
		},
	}

	service := newTestService(mockUserRepo)

	result, err := service.GetImage(ctx, 1)
	if err != entity.ErrImageNotFound {
		t.Errorf("Expected ErrImageNotFound, got %v", err)
	}

	if result != nil {
		t.Errorf("Expected nil image, got %v", result)
	}
}

func TestGetImageRoundTrip(t *testing.T) {
	ctx := context.Background()

	imageBytes := []byte("jpeg-bytes-here")
	encoded := base64.StdEncoding.EncodeToString(imageBytes)
	mockUserRepo := &MockUserRepository{
		GetByIdFunc: func(ctx context.Context, id int) (*entity.User, error) {
			return &entity.User{ID: 1, Name: "Ada", Image: &encoded}, nil
		},
	}

	service := newTestService(mockUserRepo)

	result, err := service.GetImage(ctx, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !bytes.Equal(result, imageBytes) {
		t.Errorf("Expected image %v, got %v", imageBytes, result)
	}
}

func TestUpdateImageSuccess(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := &MockUserRepository{
		GetByIdFunc: func(ctx context.Context, id int) (*entity.User, error) {
			return &entity.User{ID: 1, Name: "Ada"}, nil
		},
		UpdateFunc: func(ctx context.Context, id int, updates map[string]interface{}) (*entity.User, error) {
			image := updates["image"].(string)
			return &entity.User{ID: 1, Name: "Ada", Image: &image}, nil
		},
	}

	service := newTestService(mockUserRepo)

	result, err := service.UpdateImage(ctx, 1, []byte("picture"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Message != "Image updated successfully" {
		t.Errorf("Expected confirmation message, got %q", result.Message)
	}

	if result.User.ID != 1 || result.User.Name != "Ada" {
		t.Errorf("Expected user summary {1 Ada}, got %+v", result.User)
	}
}

func TestUpdateImageMissingFile(t *testing.T) {
	ctx := context.Background()

	service := newTestService(&MockUserRepository{})

	result, err := service.UpdateImage(ctx, 1, nil)
	if err != entity.ErrNoImage {
		t.Errorf("Expected ErrNoImage, got %v", err)
	}

	if result != nil {
		t.Errorf("Expected nil response, got %v", result)
	}
}

func TestUpdateUserPublishesAuditChanges(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := &MockUserRepository{
		GetByIdFunc: func(ctx context.Context, id int) (*entity.User, error) {
			return &entity.User{ID: 1, Name: "Ada"}, nil
		},
		UpdateFunc: func(ctx context.Context, id int, updates map[string]interface{}) (*entity.User, error) {
			return &entity.User{ID: 1, Name: updates["name"].(string)}, nil
		},
	}

	published := make(chan *entity.AuditMessage, 1)
	mockRabbitMQ := &MockRabbitMQPublisher{
		PublishAuditMessageFunc: func(ctx context.Context, message *entity.AuditMessage) error {
			published <- message
			return nil
		},
	}

	service := NewUserService(mockUserRepo, &MockUserAuditRepository{}, mockRabbitMQ)

	name := "Grace"
	if _, err := service.UpdateUser(ctx, 1, &name, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	select {
	case msg := <-published:
		if msg.Action != entity.ActionUpdate {
			t.Errorf("Expected Update action, got %s", msg.Action)
		}
		if msg.EntityID != 1 {
			t.Errorf("Expected entity ID 1, got %d", msg.EntityID)
		}
		if _, ok := msg.Changes["name"]; !ok {
			t.Error("Expected name in changes")
		}
		if _, ok := msg.Changes["image"]; ok {
			t.Error("Expected image not in changes when unchanged")
		}
	case <-time.After(time.Second):
		t.Fatal("Expected audit message to be published")
	}
}
