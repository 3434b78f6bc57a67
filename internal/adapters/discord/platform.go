package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/reaction-roles-bot/internal/app/service"
	"github.com/jose-valero/reaction-roles-bot/internal/domain"
)

// Platform implementa service.Platform sobre una sesión de discordgo.
//
// Discord no tiene reacciones restringidas: el bot pone las reacciones
// permitidas al enviar y un mensaje "restringido" es cualquier mensaje del
// bot que no es reply.
type Platform struct {
	s *discordgo.Session
}

func NewPlatform(s *discordgo.Session) *Platform { return &Platform{s: s} }

func (p *Platform) BotUserID() string {
	if p.s.State == nil || p.s.State.User == nil {
		return ""
	}
	return p.s.State.User.ID
}

func (p *Platform) EmojiKey(raw string) string { return emojiKey(raw) }

func (p *Platform) Channel(ctx context.Context, channelID string) (service.Channel, error) {
	ch, err := p.s.State.Channel(channelID)
	if err != nil {
		if ch, err = p.s.Channel(channelID, discordgo.WithContext(ctx)); err != nil {
			return service.Channel{}, restErr("channel", err)
		}
	}
	return service.Channel{ID: ch.ID, ServerID: ch.GuildID}, nil
}

func (p *Platform) Message(ctx context.Context, channelID, messageID string) (service.Message, error) {
	defer step("fetch message")()
	m, err := p.s.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return service.Message{}, restErr("message", err)
	}

	out := service.Message{
		ID:         m.ID,
		ChannelID:  m.ChannelID,
		Content:    m.Content,
		// el servicio solo usa Send (sin reply) para publicar
		Restricted: m.MessageReference == nil,
	}
	if m.Author != nil {
		out.AuthorID = m.Author.ID
	}
	if m.MessageReference != nil {
		out.ReplyTo = m.MessageReference.MessageID
	}

	// solo los drafts (replies del bot) necesitan saber quién reaccionó
	withUsers := out.ReplyTo != "" && out.AuthorID == p.BotUserID()
	for _, mr := range m.Reactions {
		if mr.Emoji == nil {
			continue
		}
		r := service.Reaction{Emoji: mr.Emoji.APIName()}
		if withUsers {
			users, err := p.s.MessageReactions(channelID, messageID, r.Emoji, 100, "", "", discordgo.WithContext(ctx))
			if err != nil {
				return service.Message{}, restErr("reactions", err)
			}
			for _, u := range users {
				r.UserIDs = append(r.UserIDs, u.ID)
			}
		}
		out.Reactions = append(out.Reactions, r)
	}
	return out, nil
}

func (p *Platform) Member(ctx context.Context, serverID, userID string) (service.Member, error) {
	m, err := p.s.GuildMember(serverID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return service.Member{}, restErr("member", err)
	}
	out := service.Member{UserID: userID, RoleIDs: m.Roles}
	if m.User != nil {
		out.Bot = m.User.Bot
	}
	return out, nil
}

// Server: roles siempre por REST (el rank puede haber cambiado); el owner
// sale del state si está.
func (p *Platform) Server(ctx context.Context, serverID string) (service.Server, error) {
	ownerID, err := p.ownerID(ctx, serverID)
	if err != nil {
		return service.Server{}, err
	}
	roles, err := p.s.GuildRoles(serverID, discordgo.WithContext(ctx))
	if err != nil {
		return service.Server{}, restErr("roles", err)
	}
	return service.Server{ID: serverID, OwnerID: ownerID, Roles: toRoles(serverID, roles)}, nil
}

func (p *Platform) ownerID(ctx context.Context, serverID string) (string, error) {
	if g, err := p.s.State.Guild(serverID); err == nil && g.OwnerID != "" {
		return g.OwnerID, nil
	}
	g, err := p.s.Guild(serverID, discordgo.WithContext(ctx))
	if err != nil {
		return "", restErr("guild", err)
	}
	return g.OwnerID, nil
}

// toRoles: en Discord mayor posición = más autoridad, así que el rank es -Position.
// @everyone queda afuera: nadie lo "tiene" ni se puede asignar.
func toRoles(guildID string, roles []*discordgo.Role) []domain.Role {
	out := make([]domain.Role, 0, len(roles))
	for _, r := range roles {
		if r.ID == guildID {
			continue
		}
		out = append(out, domain.Role{ID: r.ID, Name: r.Name, Rank: domain.Rank(-r.Position)})
	}
	return out
}

func (p *Platform) Capabilities(ctx context.Context, serverID, userID string) (service.Capabilities, error) {
	ownerID, err := p.ownerID(ctx, serverID)
	if err != nil {
		return service.Capabilities{}, err
	}
	roles, err := p.s.GuildRoles(serverID, discordgo.WithContext(ctx))
	if err != nil {
		return service.Capabilities{}, restErr("roles", err)
	}
	var memberRoles []string
	if userID != ownerID {
		m, err := p.s.GuildMember(serverID, userID, discordgo.WithContext(ctx))
		if err != nil {
			return service.Capabilities{}, restErr("member", err)
		}
		memberRoles = m.Roles
	}
	return capabilities(guildPermissions(serverID, ownerID, userID, roles, memberRoles)), nil
}

func (p *Platform) Reply(ctx context.Context, channelID, replyToID, content string, in service.Interactions) (service.Message, error) {
	return p.send(ctx, channelID, &discordgo.MessageSend{
		Content:   content,
		Reference: &discordgo.MessageReference{MessageID: replyToID, ChannelID: channelID},
	}, in)
}

func (p *Platform) Send(ctx context.Context, channelID, content string, in service.Interactions) (service.Message, error) {
	return p.send(ctx, channelID, &discordgo.MessageSend{Content: content}, in)
}

func (p *Platform) send(ctx context.Context, channelID string, data *discordgo.MessageSend, in service.Interactions) (service.Message, error) {
	defer step("send message")()
	m, err := p.s.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx))
	if err != nil {
		return service.Message{}, restErr("send", err)
	}
	for _, e := range in.Reactions {
		if err := p.s.MessageReactionAdd(channelID, m.ID, e, discordgo.WithContext(ctx)); err != nil {
			return service.Message{}, restErr("react", err)
		}
	}
	out := service.Message{
		ID:         m.ID,
		ChannelID:  m.ChannelID,
		Content:    m.Content,
		Restricted: in.Restrict,
	}
	if m.Author != nil {
		out.AuthorID = m.Author.ID
	}
	if data.Reference != nil {
		out.ReplyTo = data.Reference.MessageID
	}
	return out, nil
}

func (p *Platform) Edit(ctx context.Context, channelID, messageID, content string) error {
	_, err := p.s.ChannelMessageEdit(channelID, messageID, content, discordgo.WithContext(ctx))
	return restErr("edit", err)
}

func (p *Platform) Delete(ctx context.Context, channelID, messageID string) error {
	return restErr("delete", p.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

func (p *Platform) SetMemberRoles(ctx context.Context, serverID, userID string, roleIDs []string) error {
	_, err := p.s.GuildMemberEdit(serverID, userID, &discordgo.GuildMemberParams{Roles: &roleIDs}, discordgo.WithContext(ctx))
	return restErr("member edit", err)
}

func (p *Platform) SetStatus(_ context.Context, text string) error {
	return p.s.UpdateCustomStatus(text)
}

// restErr marca como ErrStaleReference lo que Discord ya no encuentra.
func restErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUnknown(err) {
		return fmt.Errorf("%s: %w: %w", op, service.ErrStaleReference, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnknown(err error) bool {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return false
	}
	if rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
		return true
	}
	if rest.Message == nil {
		return false
	}
	switch rest.Message.Code {
	case discordgo.ErrCodeUnknownChannel,
		discordgo.ErrCodeUnknownGuild,
		discordgo.ErrCodeUnknownMember,
		discordgo.ErrCodeUnknownMessage,
		discordgo.ErrCodeUnknownRole,
		discordgo.ErrCodeUnknownUser:
		return true
	}
	return false
}
