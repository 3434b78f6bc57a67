package storage

import "time"

// Acciones registradas en grant_log.
const (
	ActionGrant  = "grant"
	ActionRevoke = "revoke"
)

// Grant es una fila del log de auditoría: un rol dado o quitado por reacción.
type Grant struct {
	ID         int64     `json:"id"`
	GuildID    string    `json:"guild_id"`
	UserID     string    `json:"user_id"`
	RoleID     string    `json:"role_id"`
	MessageID  string    `json:"message_id"`
	Action     string    `json:"action"`      // grant | revoke
	RolesAfter []string  `json:"roles_after"` // roles del miembro después del cambio
	CreatedAt  time.Time `json:"created_at"`
}
