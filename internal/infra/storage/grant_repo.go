package storage

import (
	"context"
	"database/sql"
	"time"

	pq "github.com/lib/pq"
)

type GrantRepo struct{ db *sql.DB }

func NewGrantRepo(db *sql.DB) *GrantRepo { return &GrantRepo{db: db} }

// Record inserta una fila en grant_log.
func (r *GrantRepo) Record(ctx context.Context, g Grant) error {
	rolesAfter := g.RolesAfter
	if rolesAfter == nil {
		rolesAfter = []string{}
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO grant_log (guild_id, user_id, role_id, message_id, action, roles_after)
VALUES ($1, $2, $3, $4, $5, $6)
`, g.GuildID, g.UserID, g.RoleID, g.MessageID, g.Action, pq.Array(rolesAfter))
	return err
}

// ListByMember devuelve los últimos cambios de un miembro, más nuevos primero.
func (r *GrantRepo) ListByMember(ctx context.Context, guildID, userID string, limit int) ([]Grant, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, guild_id, user_id, role_id, message_id, action, roles_after, created_at
  FROM grant_log
 WHERE guild_id = $1 AND user_id = $2
 ORDER BY created_at DESC
 LIMIT $3
`, guildID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.ID, &g.GuildID, &g.UserID, &g.RoleID, &g.MessageID, &g.Action,
			pq.Array(&g.RolesAfter), &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Prune borra filas más viejas que olderThan.
func (r *GrantRepo) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM grant_log
 WHERE created_at < $1
`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
