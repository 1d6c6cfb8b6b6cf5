package repository

import (
	"context"

	"github.com/St1cky1/user-service/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// создаем пользователя
func (r *UserRepository) Create(ctx context.Context, user *entity.CreateUserRequest) (*entity.User, error) {

	query := `
	INSERT INTO "user" (name, image)
	VALUES ($1, $2)
	RETURNING id, name, image, created_at, updated_at
	`

	var createdUser entity.User

	err := r.db.QueryRow(ctx, query, user.Name, user.Image).Scan(
		&createdUser.ID,
		&createdUser.Name,
		&createdUser.Image,
		&createdUser.CreatedAt,
		&createdUser.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &createdUser, nil
}

// получаем данные по id
func (r *UserRepository) GetById(ctx context.Context, id int) (*entity.User, error) {
	query := `
	SELECT id, name, image, created_at, updated_at
	FROM "user"
	WHERE  id = ($1)
	`
	var user entity.User

	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Image,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// Update - обновляем пользователя, nil-поля не трогаем
func (r *UserRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.User, error) {
	query := `
	UPDATE "user"
	SET name = COALESCE($1, name),
	    image = COALESCE($2, image),
	    updated_at = CURRENT_TIMESTAMP
	WHERE id = $3
	RETURNING id, name, image, created_at, updated_at
	`

	var user entity.User

	var name interface{} = updates["name"]
	var image interface{} = updates["image"]

	err := r.db.QueryRow(ctx, query, name, image, id).Scan(
		&user.ID,
		&user.Name,
		&user.Image,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// List - получаем страницу пользователей
func (r *UserRepository) List(ctx context.Context, skip, limit int) ([]entity.User, error) {
	query := `
	SELECT id, name, image, created_at, updated_at
	FROM "user"
	ORDER BY id
	LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		var user entity.User
		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Image,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// Count - общее количество пользователей
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM "user"`).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Delete - удаляем пользователя
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM "user" WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

// CreateMany - батчевая вставка пользователей без картинок
func (r *UserRepository) CreateMany(ctx context.Context, names []string) (int64, error) {
	rows := make([][]interface{}, 0, len(names))
	for _, name := range names {
		rows = append(rows, []interface{}{name})
	}

	return r.db.CopyFrom(
		ctx,
		pgx.Identifier{"user"},
		[]string{"name"},
		pgx.CopyFromRows(rows),
	)
}
