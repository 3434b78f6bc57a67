package service

import "github.com/jose-valero/reaction-roles-bot/internal/domain"

// Channel: ServerID vacío = DM / canal fuera de un servidor.
type Channel struct {
	ID       string
	ServerID string
}

type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	Content   string
	// ReplyTo es el id del mensaje al que responde (vacío si no es reply).
	ReplyTo string
	// Restricted: el mensaje solo acepta las reacciones que puso el bot.
	Restricted bool
	// Reactions en el orden en que aparecieron.
	Reactions []Reaction
}

type Reaction struct {
	Emoji   string
	UserIDs []string
}

type Member struct {
	UserID  string
	RoleIDs []string
	Bot     bool
}

type Server struct {
	ID      string
	OwnerID string
	Roles   []domain.Role
}

type Capabilities struct {
	AssignRoles bool
	React       bool
}

// Interactions controla las reacciones de un mensaje enviado por el bot.
type Interactions struct {
	Reactions []string
	Restrict  bool
}

// restricted: para respuestas de error / ayuda, que no disparan nada.
var restricted = Interactions{Restrict: true}

// MessageCreate es el evento de mensaje nuevo.
type MessageCreate struct {
	ID        string
	ChannelID string
	AuthorID  string
	AuthorBot bool
	Content   string
}

// ReactionEvent cubre tanto reacción agregada como quitada.
type ReactionEvent struct {
	MessageID string
	ChannelID string
	UserID    string
	Emoji     string
	Added     bool
}

// Stats: tamaños actuales de los caches.
type Stats struct {
	Drafts    int `json:"drafts"`
	Published int `json:"published"`
}
