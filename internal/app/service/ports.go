package service

import (
	"context"

	"github.com/jose-valero/reaction-roles-bot/internal/infra/storage"
)

// Lo implementa internal/adapters/discord.Platform
type Platform interface {
	BotUserID() string
	Channel(ctx context.Context, channelID string) (Channel, error)
	Message(ctx context.Context, channelID, messageID string) (Message, error)
	Member(ctx context.Context, serverID, userID string) (Member, error)
	Server(ctx context.Context, serverID string) (Server, error)
	Capabilities(ctx context.Context, serverID, userID string) (Capabilities, error)

	Reply(ctx context.Context, channelID, replyToID, content string, in Interactions) (Message, error)
	Send(ctx context.Context, channelID, content string, in Interactions) (Message, error)
	Edit(ctx context.Context, channelID, messageID, content string) error
	Delete(ctx context.Context, channelID, messageID string) error
	SetMemberRoles(ctx context.Context, serverID, userID string, roleIDs []string) error
	SetStatus(ctx context.Context, text string) error

	// EmojiKey traduce el emoji crudo de una reacción al id que va en los tags.
	EmojiKey(raw string) string
}

// Lo implementa internal/infra/cache.LRU
type Store[V any] interface {
	Get(id string) (V, bool)
	Set(id string, v V)
	Delete(id string) bool
	Len() int
}

// Lo implementa internal/infra/storage.GrantRepo
type GrantRecorder interface {
	Record(ctx context.Context, g storage.Grant) error
}
