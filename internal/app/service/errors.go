package service

import (
	"errors"
	"fmt"
)

// ErrStaleReference: rol, miembro, canal o mensaje que ya no existe.
// Los adapters lo envuelven con %w cuando la plataforma responde "not found".
var ErrStaleReference = errors.New("stale reference")

type Kind int

const (
	KindParseEmpty Kind = iota
	KindUnresolvedPlaceholder
	KindRankViolation
	KindMissingCapability
	KindStaleReference
	KindDecodeAnomaly
)

func (k Kind) String() string {
	switch k {
	case KindParseEmpty:
		return "parse_empty"
	case KindUnresolvedPlaceholder:
		return "unresolved_placeholder"
	case KindRankViolation:
		return "rank_violation"
	case KindMissingCapability:
		return "missing_capability"
	case KindStaleReference:
		return "stale_reference"
	case KindDecodeAnomaly:
		return "decode_anomaly"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Quién falló un chequeo.
const (
	ActorBot  = "bot"
	ActorUser = "user"
)

// Capacidades que el protocolo necesita.
const (
	CapAssignRoles = "AssignRoles"
	CapReact       = "React"
)

// Error es un fallo de validación del protocolo.
type Error struct {
	Kind       Kind
	Role       string // nombre o id del rol
	Actor      string // ActorBot | ActorUser
	UserID     string
	Capability string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Actor != "" {
		msg += " actor=" + e.Actor
	}
	if e.UserID != "" {
		msg += " user=" + e.UserID
	}
	if e.Role != "" {
		msg += " role=" + e.Role
	}
	if e.Capability != "" {
		msg += " capability=" + e.Capability
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage es el texto que se responde en el chat.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindMissingCapability:
		if e.Actor == ActorBot {
			return fmt.Sprintf("⚠️ No tengo el permiso `%s`.", e.Capability)
		}
		return fmt.Sprintf("⚠️ No tenés el permiso `%s`.", e.Capability)
	case KindUnresolvedPlaceholder:
		return "⚠️ No encontré el rol:\n" + e.Role
	case KindRankViolation:
		if e.Actor == ActorBot {
			return "⚠️ Solo puedo asignar roles por debajo del mío:\n" + e.Role
		}
		return fmt.Sprintf("⚠️ <@%s>, solo podés asignar roles por debajo del tuyo:\n%s", e.UserID, e.Role)
	}
	return "⚠️ Ocurrió un error inesperado."
}

// UserVisible: se responde en el chat. El resto solo va al log.
func (e *Error) UserVisible() bool {
	switch e.Kind {
	case KindMissingCapability, KindUnresolvedPlaceholder, KindRankViolation:
		return true
	}
	return false
}
