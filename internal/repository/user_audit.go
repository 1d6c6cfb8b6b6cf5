package repository

import (
	"context"

	"github.com/St1cky1/user-service/internal/entity"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserAuditRepository struct {
	db *pgxpool.Pool
}

func NewUserAuditRepository(db *pgxpool.Pool) *UserAuditRepository {
	return &UserAuditRepository{
		db: db,
	}
}

// Create - сохраняем запись аудита
func (r *UserAuditRepository) Create(ctx context.Context, audit *entity.UserAudit) error {
	query := `
	INSERT INTO user_audit (action, entity_type, entity_id, old_values, new_values, changes, changed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		audit.Action,
		audit.EntityType,
		audit.EntityID,
		audit.OldValues,
		audit.NewValues,
		audit.Changes,
		audit.ChangedAt,
	)

	return err
}

// GetByUserId - история изменений пользователя
func (r *UserAuditRepository) GetByUserId(ctx context.Context, userId int) ([]entity.UserAudit, error) {
	query := `
	SELECT id, action, entity_type, entity_id, old_values, new_values, changes, changed_at
	FROM user_audit
	WHERE entity_type = 'user' AND entity_id = $1
	ORDER BY changed_at DESC
	`

	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []entity.UserAudit
	for rows.Next() {
		var audit entity.UserAudit
		err := rows.Scan(
			&audit.ID,
			&audit.Action,
			&audit.EntityType,
			&audit.EntityID,
			&audit.OldValues,
			&audit.NewValues,
			&audit.Changes,
			&audit.ChangedAt,
		)
		if err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}

	return audits, rows.Err()
}
