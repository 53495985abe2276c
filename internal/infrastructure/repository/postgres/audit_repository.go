package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/clubroyale/auction-league/internal/domain/audit"
)

type auditTableModel struct {
	ID         string    `db:"id"`
	ActorID    string    `db:"actor_id"`
	Action     string    `db:"action"`
	EntityType string    `db:"entity_type"`
	EntityID   string    `db:"entity_id"`
	Detail     []byte    `db:"detail"`
	CreatedAt  time.Time `db:"created_at"`
}

func (m auditTableModel) toDomain() (audit.Entry, error) {
	entry := audit.Entry{
		ID:         m.ID,
		ActorID:    m.ActorID,
		Action:     m.Action,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		CreatedAt:  m.CreatedAt,
	}
	if len(m.Detail) > 0 {
		if err := sonic.Unmarshal(m.Detail, &entry.Detail); err != nil {
			return audit.Entry{}, fmt.Errorf("decode audit detail: %w", err)
		}
	}
	return entry, nil
}

type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry audit.Entry) error {
	const query = `
INSERT INTO audit_log (id, actor_id, action, entity_type, entity_id, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	detail, err := sonic.Marshal(entry.Detail)
	if err != nil {
		return fmt.Errorf("encode audit detail: %w", err)
	}

	_, err = execer(ctx, r.db).ExecContext(ctx, query,
		entry.ID, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, detail, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]audit.Entry, error) {
	const query = `
SELECT * FROM audit_log
WHERE entity_type = $1 AND entity_id = $2
ORDER BY created_at`

	var rows []auditTableModel
	if err := sqlx.SelectContext(ctx, execer(ctx, r.db), &rows, query, entityType, entityID); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	out := make([]audit.Entry, 0, len(rows))
	for _, row := range rows {
		entry, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}
