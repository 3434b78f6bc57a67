package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/jose-valero/reaction-roles-bot/internal/domain"
	"github.com/jose-valero/reaction-roles-bot/internal/infra/logging"
	"github.com/jose-valero/reaction-roles-bot/internal/infra/storage"
)

// StatusText es la presencia que se setea en el ready.
const StatusText = "Mention Me!"

type Options struct {
	// Checkmark es el emoji crudo que confirma el setup.
	Checkmark string
	// RoleIDPattern para los tags; vacío = domain.ULIDPattern.
	RoleIDPattern string
	// Grants es opcional (nil = sin audit log).
	Grants GrantRecorder
	// AllowHelp throttlea la ayuda por usuario; nil = siempre.
	AllowHelp func(userID string) bool
}

type ReactionRolesService struct {
	p         Platform
	drafts    Store[domain.Draft]
	published Store[domain.Mapping]

	checkmark string
	decoder   domain.Decoder
	grants    GrantRecorder
	allowHelp func(string) bool
}

func NewReactionRolesService(p Platform, drafts Store[domain.Draft], published Store[domain.Mapping], opt Options) *ReactionRolesService {
	pattern := opt.RoleIDPattern
	if pattern == "" {
		pattern = domain.ULIDPattern
	}
	return &ReactionRolesService{
		p:         p,
		drafts:    drafts,
		published: published,
		checkmark: opt.Checkmark,
		decoder:   domain.NewDecoder(pattern),
		grants:    opt.Grants,
		allowHelp: opt.AllowHelp,
	}
}

func (s *ReactionRolesService) Stats() Stats {
	return Stats{Drafts: s.drafts.Len(), Published: s.published.Len()}
}

// HandleReady: la presencia se pierde con cada sesión nueva, así que se setea siempre.
func (s *ReactionRolesService) HandleReady(ctx context.Context) error {
	logging.From(ctx).WithField("bot", s.p.BotUserID()).Info("ready")
	return s.p.SetStatus(ctx, StatusText)
}

func (s *ReactionRolesService) HandleMessage(ctx context.Context, m MessageCreate) error {
	botID := s.p.BotUserID()
	if m.AuthorID == botID {
		return nil
	}
	text, ok := stripMention(m.Content, botID)
	if !ok {
		return nil
	}
	ch, err := s.p.Channel(ctx, m.ChannelID)
	if err != nil {
		return fmt.Errorf("fetch channel: %w", err)
	}
	if ch.ServerID == "" {
		return nil
	}

	if text == "" || text == "help" {
		if s.allowHelp != nil && !s.allowHelp(m.AuthorID) {
			return nil
		}
		_, err := s.p.Reply(ctx, m.ChannelID, m.ID, HelpMessage(botID), restricted)
		return err
	}
	if m.AuthorBot {
		return nil
	}
	return s.setup(ctx, ch, m, text)
}

// setup valida todo el comando antes de responder; el primer fallo corta.
func (s *ReactionRolesService) setup(ctx context.Context, ch Channel, m MessageCreate, text string) error {
	log := logging.From(ctx)
	if !domain.HasPlaceholders(text) {
		log.Debug("mención sin placeholders, se ignora")
		return nil
	}

	if err := s.validateSetup(ctx, ch.ServerID, m.AuthorID, text); err != nil {
		var verr *Error
		if errors.As(err, &verr) && verr.UserVisible() {
			log.WithField("kind", verr.Kind).Info("setup rechazado: " + verr.Error())
			_, rerr := s.p.Reply(ctx, m.ChannelID, m.ID, verr.UserMessage(), restricted)
			return rerr
		}
		return err
	}

	reply, err := s.p.Reply(ctx, m.ChannelID, m.ID, domain.Truncate(text, domain.MaxMessageLength), Interactions{
		Reactions: []string{s.checkmark},
	})
	if err != nil {
		return fmt.Errorf("reply setup: %w", err)
	}
	d := domain.NewDraft(m.AuthorID, ch.ServerID, reply.Content)
	s.drafts.Set(reply.ID, d)
	log.WithFields(logrus.Fields{"draft": reply.ID, "placeholders": len(d.Matches)}).Info("draft creado")
	return nil
}

func (s *ReactionRolesService) validateSetup(ctx context.Context, serverID, authorID, text string) error {
	botID := s.p.BotUserID()

	botCaps, err := s.p.Capabilities(ctx, serverID, botID)
	if err != nil {
		return fmt.Errorf("bot capabilities: %w", err)
	}
	if !botCaps.React {
		return &Error{Kind: KindMissingCapability, Actor: ActorBot, Capability: CapReact}
	}
	if !botCaps.AssignRoles {
		return &Error{Kind: KindMissingCapability, Actor: ActorBot, Capability: CapAssignRoles}
	}
	userCaps, err := s.p.Capabilities(ctx, serverID, authorID)
	if err != nil {
		return fmt.Errorf("user capabilities: %w", err)
	}
	if !userCaps.AssignRoles {
		return &Error{Kind: KindMissingCapability, Actor: ActorUser, UserID: authorID, Capability: CapAssignRoles}
	}

	server, err := s.p.Server(ctx, serverID)
	if err != nil {
		return fmt.Errorf("fetch server: %w", err)
	}
	roles := domain.NewRoleLookup(server.Roles)
	bot, err := s.actor(ctx, server, roles, botID)
	if err != nil {
		return err
	}
	author, err := s.actor(ctx, server, roles, authorID)
	if err != nil {
		return err
	}

	for _, ph := range domain.ParsePlaceholders(text) {
		role, ok := roles[ph.Name]
		if !ok {
			return &Error{Kind: KindUnresolvedPlaceholder, Role: ph.Name}
		}
		if !domain.CanAct(bot, role.Rank) {
			return &Error{Kind: KindRankViolation, Actor: ActorBot, Role: ph.Name}
		}
		if !domain.CanAct(author, role.Rank) {
			return &Error{Kind: KindRankViolation, Actor: ActorUser, UserID: authorID, Role: ph.Name}
		}
	}
	return nil
}

// actor: el owner del servidor tiene autoridad total, el resto su rol más alto.
func (s *ReactionRolesService) actor(ctx context.Context, server Server, roles domain.RoleLookup, userID string) (domain.Actor, error) {
	if userID == server.OwnerID {
		return domain.Owner(), nil
	}
	mem, err := s.p.Member(ctx, server.ID, userID)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("fetch member %s: %w", userID, err)
	}
	return domain.Member(domain.MemberRank(mem.RoleIDs, roles)), nil
}

// HandleReaction atiende tanto agregar como quitar reacciones. Las del propio
// bot (las que pone al enviar) no disparan nada.
func (s *ReactionRolesService) HandleReaction(ctx context.Context, ev ReactionEvent) error {
	botID := s.p.BotUserID()
	if ev.UserID == botID {
		return nil
	}
	msg, err := s.p.Message(ctx, ev.ChannelID, ev.MessageID)
	if err != nil {
		return fmt.Errorf("fetch message: %w", err)
	}
	if msg.AuthorID != botID {
		return nil
	}

	if msg.ReplyTo != "" {
		d, ok := s.drafts.Get(msg.ID)
		if !ok {
			d, ok, err = s.reconstruct(ctx, msg)
			if err != nil || !ok {
				return err
			}
			s.drafts.Set(msg.ID, d)
			logging.From(ctx).WithField("draft", msg.ID).Info("draft reconstruido")
		}
		return s.onSetupReact(ctx, ev, msg, d)
	}

	mapping, ok := s.published.Get(msg.ID)
	if !ok {
		if !msg.Restricted {
			return nil
		}
		mapping = s.decoder.Decode(msg.Content)
		s.published.Set(msg.ID, mapping)
	}
	return s.onRoleReact(ctx, ev, mapping)
}

// reconstruct rearma un draft expulsado del cache a partir del mensaje que lo pidió.
// Respuestas de error o ayuda nunca califican.
func (s *ReactionRolesService) reconstruct(ctx context.Context, msg Message) (domain.Draft, bool, error) {
	parent, err := s.p.Message(ctx, msg.ChannelID, msg.ReplyTo)
	if errors.Is(err, ErrStaleReference) {
		return domain.Draft{}, false, nil
	}
	if err != nil {
		return domain.Draft{}, false, fmt.Errorf("fetch parent: %w", err)
	}
	text, ok := stripMention(parent.Content, s.p.BotUserID())
	if !ok || !domain.HasPlaceholders(text) || !domain.IsSetupContent(msg.Content) {
		return domain.Draft{}, false, nil
	}
	ch, err := s.p.Channel(ctx, parent.ChannelID)
	if err != nil {
		return domain.Draft{}, false, fmt.Errorf("fetch channel: %w", err)
	}
	if ch.ServerID == "" {
		return domain.Draft{}, false, nil
	}
	return domain.NewDraft(parent.AuthorID, ch.ServerID, domain.Truncate(text, domain.MaxMessageLength)), true, nil
}

func (s *ReactionRolesService) onSetupReact(ctx context.Context, ev ReactionEvent, msg Message, d domain.Draft) error {
	if ev.UserID != d.OwnerID {
		return nil
	}
	server, err := s.p.Server(ctx, d.ServerID)
	if err != nil {
		return fmt.Errorf("fetch server: %w", err)
	}
	roles := domain.NewRoleLookup(server.Roles)

	var keys, raw []string
	confirmed := false
	for _, r := range msg.Reactions {
		if !slices.Contains(r.UserIDs, d.OwnerID) {
			continue
		}
		if r.Emoji == s.checkmark {
			confirmed = true
			continue
		}
		raw = append(raw, r.Emoji)
		keys = append(keys, s.p.EmojiKey(r.Emoji))
	}

	content := d.Rewrite(keys, roles)
	if confirmed && len(keys) == len(d.Matches) {
		return s.publish(ctx, msg, d, server, roles, content, raw)
	}
	if content == msg.Content {
		return nil
	}
	return s.p.Edit(ctx, msg.ChannelID, msg.ID, content)
}

// publish reemplaza el draft por el mensaje final. Todo se valida antes de enviar.
func (s *ReactionRolesService) publish(ctx context.Context, msg Message, d domain.Draft, server Server, roles domain.RoleLookup, content string, raw []string) error {
	log := logging.From(ctx)

	if name, bad := d.Unresolved(roles); bad {
		verr := &Error{Kind: KindUnresolvedPlaceholder, Role: name}
		log.Info("publicación bloqueada: " + verr.Error())
		_, err := s.p.Reply(ctx, msg.ChannelID, msg.ID, verr.UserMessage(), restricted)
		return err
	}

	mapping := s.decoder.Decode(content)
	if len(mapping) != len(d.Matches) {
		return &Error{Kind: KindDecodeAnomaly, Err: fmt.Errorf("%d tags para %d placeholders", len(mapping), len(d.Matches))}
	}

	owner, err := s.actor(ctx, server, roles, d.OwnerID)
	if err != nil {
		return err
	}
	if owner.Authority != domain.AuthorityOwner && owner.Rank == domain.NoRank {
		return &Error{Kind: KindRankViolation, Actor: ActorUser, UserID: d.OwnerID, Err: errors.New("el dueño del draft no tiene roles")}
	}
	for _, ph := range d.Matches {
		role := roles[ph.Name]
		if !domain.CanAct(owner, role.Rank) {
			return &Error{Kind: KindRankViolation, Actor: ActorUser, UserID: d.OwnerID, Role: role.Name}
		}
	}

	// único mensaje del bot que no es reply: en Discord eso es lo que lo marca
	// como Restricted y decodificable (ver discord.Platform.Message).
	out, err := s.p.Send(ctx, msg.ChannelID, content, Interactions{Reactions: raw, Restrict: true})
	if err != nil {
		return fmt.Errorf("send published: %w", err)
	}
	s.published.Set(out.ID, mapping)
	s.drafts.Delete(msg.ID)
	log.WithFields(logrus.Fields{"draft": msg.ID, "published": out.ID, "roles": len(mapping)}).Info("reaction roles publicado")

	if err := s.p.Delete(ctx, msg.ChannelID, msg.ID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func (s *ReactionRolesService) onRoleReact(ctx context.Context, ev ReactionEvent, mapping domain.Mapping) error {
	if len(mapping) == 0 {
		return nil
	}
	roleID, ok := mapping[s.p.EmojiKey(ev.Emoji)]
	if !ok {
		return nil
	}

	ch, err := s.p.Channel(ctx, ev.ChannelID)
	if err != nil {
		return fmt.Errorf("fetch channel: %w", err)
	}
	server, err := s.p.Server(ctx, ch.ServerID)
	if err != nil {
		return fmt.Errorf("fetch server: %w", err)
	}
	roles := domain.NewRoleLookup(server.Roles)
	role, ok := roles.ByID(roleID)
	if !ok {
		return &Error{Kind: KindStaleReference, Role: roleID, Err: ErrStaleReference}
	}

	botID := s.p.BotUserID()
	caps, err := s.p.Capabilities(ctx, server.ID, botID)
	if err != nil {
		return fmt.Errorf("bot capabilities: %w", err)
	}
	if !caps.AssignRoles {
		return &Error{Kind: KindMissingCapability, Actor: ActorBot, Capability: CapAssignRoles}
	}
	botMember, err := s.p.Member(ctx, server.ID, botID)
	if err != nil {
		return fmt.Errorf("fetch bot member: %w", err)
	}
	botRank := domain.MemberRank(botMember.RoleIDs, roles)
	if botRank == domain.NoRank {
		return &Error{Kind: KindRankViolation, Actor: ActorBot, Err: errors.New("el bot no tiene roles")}
	}
	bot := domain.Member(botRank)
	if !domain.CanAct(bot, role.Rank) {
		return &Error{Kind: KindRankViolation, Actor: ActorBot, Role: role.Name}
	}

	member, err := s.p.Member(ctx, server.ID, ev.UserID)
	if errors.Is(err, ErrStaleReference) {
		return &Error{Kind: KindStaleReference, UserID: ev.UserID, Err: err}
	}
	if err != nil {
		return fmt.Errorf("fetch member: %w", err)
	}
	if r := domain.MemberRank(member.RoleIDs, roles); r != domain.NoRank && !domain.CanAct(bot, r) {
		return &Error{Kind: KindRankViolation, Actor: ActorUser, UserID: ev.UserID, Role: role.Name,
			Err: errors.New("el miembro está por encima del bot")}
	}

	roleIDs := slices.Clone(member.RoleIDs)
	action, label := storage.ActionGrant, "GIVING"
	if ev.Added {
		if slices.Contains(roleIDs, roleID) {
			return nil
		}
		roleIDs = append(roleIDs, roleID)
	} else {
		i := slices.Index(roleIDs, roleID)
		if i < 0 {
			return nil
		}
		roleIDs = slices.Delete(roleIDs, i, i+1)
		action, label = storage.ActionRevoke, "REMOVING"
	}

	logging.From(ctx).WithFields(logrus.Fields{
		"user":   ev.UserID,
		"role":   roleID,
		"server": server.ID,
	}).Info(label)
	if err := s.p.SetMemberRoles(ctx, server.ID, ev.UserID, roleIDs); err != nil {
		return fmt.Errorf("edit member roles: %w", err)
	}

	s.record(ctx, storage.Grant{
		GuildID:    server.ID,
		UserID:     ev.UserID,
		RoleID:     roleID,
		MessageID:  ev.MessageID,
		Action:     action,
		RolesAfter: roleIDs,
	})
	return nil
}

// record: un fallo del audit log no tumba el evento.
func (s *ReactionRolesService) record(ctx context.Context, g storage.Grant) {
	if s.grants == nil {
		return
	}
	if err := s.grants.Record(ctx, g); err != nil {
		logging.From(ctx).WithError(err).Warn("grant log")
	}
}

// HandleMessageDelete saca el id de cualquiera de los dos caches.
func (s *ReactionRolesService) HandleMessageDelete(ctx context.Context, messageID string) {
	if s.drafts.Delete(messageID) {
		logging.From(ctx).WithField("draft", messageID).Debug("draft borrado")
		return
	}
	if s.published.Delete(messageID) {
		logging.From(ctx).WithField("published", messageID).Debug("publicado borrado")
	}
}

// stripMention saca la mención al bot del principio (<@id> o <@!id>).
func stripMention(content, botID string) (string, bool) {
	for _, p := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
		if rest, ok := strings.CutPrefix(content, p); ok {
			return strings.TrimLeftFunc(rest, unicode.IsSpace), true
		}
	}
	return "", false
}

// HelpMessage es la ayuda que se responde a una mención vacía o "help".
func HelpMessage(botID string) string {
	return fmt.Sprintf(`El bot necesita los permisos `+"`AssignRoles`"+` y `+"`React`"+`.
Solo puede asignar roles por debajo de su rol más alto, y no puede darle roles a quien esté por encima suyo.

Para crear un mensaje de reaction roles, mencioná al bot con el texto que querés publicar:

<@%s>
`+"`{ROLE:Rust}`"+` el bot reemplaza esto en el siguiente paso
podés poner roles en cualquier parte `+"`{ROLE:Python}`"+` del mensaje

Después reaccioná al mensaje con los emojis que quieras, en orden.
Cuando termines, reaccioná con el check ✅.

El ejemplo quedaría así:

:rust:[](ROLE_ID) __Rust__ el bot reemplaza esto en el siguiente paso
podés poner roles en cualquier parte :snake:[](ROLE_ID) __Python__ del mensaje`, botID)
}
