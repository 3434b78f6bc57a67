package discord

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/jose-valero/reaction-roles-bot/internal/app/service"
	"github.com/jose-valero/reaction-roles-bot/internal/infra/logging"
)

const queueSize = 256

// Intents que necesita el router.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsMessageContent

type event struct {
	name   string
	fields logrus.Fields
	run    func(ctx context.Context) error
}

// Router pasa los eventos del gateway al servicio de a uno: los handlers de
// discordgo solo encolan y un único worker los procesa en orden.
type Router struct {
	s       *discordgo.Session
	svc     *service.ReactionRolesService
	timeout time.Duration

	events chan event
	done   chan struct{}
}

func NewRouter(s *discordgo.Session, svc *service.ReactionRolesService, timeout time.Duration) *Router {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Router{
		s:       s,
		svc:     svc,
		timeout: timeout,
		events:  make(chan event, queueSize),
		done:    make(chan struct{}),
	}
}

// HelpLimiter arma el throttle de la ayuda para service.Options.AllowHelp.
func HelpLimiter(window time.Duration) func(userID string) bool {
	return newUserLimiter(window).Allow
}

func (r *Router) Handlers() {
	r.s.AddHandler(func(_ *discordgo.Session, e *discordgo.Ready) {
		r.enqueue(event{
			name:   "ready",
			fields: logrus.Fields{"session": e.SessionID},
			run:    r.svc.HandleReady,
		})
	})

	r.s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil {
			return
		}
		ev := service.MessageCreate{
			ID:        m.ID,
			ChannelID: m.ChannelID,
			AuthorID:  m.Author.ID,
			AuthorBot: m.Author.Bot,
			Content:   m.Content,
		}
		r.enqueue(event{
			name:   "message_create",
			fields: logrus.Fields{"guild": m.GuildID, "channel": m.ChannelID, "message": m.ID, "user": m.Author.ID},
			run:    func(ctx context.Context) error { return r.svc.HandleMessage(ctx, ev) },
		})
	})

	r.s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageDelete) {
		id := m.ID
		r.enqueue(event{
			name:   "message_delete",
			fields: logrus.Fields{"guild": m.GuildID, "channel": m.ChannelID, "message": id},
			run: func(ctx context.Context) error {
				r.svc.HandleMessageDelete(ctx, id)
				return nil
			},
		})
	})

	r.s.AddHandler(func(_ *discordgo.Session, e *discordgo.MessageReactionAdd) {
		r.enqueueReaction("reaction_add", e.MessageReaction, true)
	})
	r.s.AddHandler(func(_ *discordgo.Session, e *discordgo.MessageReactionRemove) {
		r.enqueueReaction("reaction_remove", e.MessageReaction, false)
	})
}

func (r *Router) enqueueReaction(name string, mr *discordgo.MessageReaction, added bool) {
	if mr == nil {
		return
	}
	ev := service.ReactionEvent{
		MessageID: mr.MessageID,
		ChannelID: mr.ChannelID,
		UserID:    mr.UserID,
		Emoji:     mr.Emoji.APIName(),
		Added:     added,
	}
	r.enqueue(event{
		name:   name,
		fields: logrus.Fields{"guild": mr.GuildID, "channel": mr.ChannelID, "message": mr.MessageID, "user": mr.UserID},
		run:    func(ctx context.Context) error { return r.svc.HandleReaction(ctx, ev) },
	})
}

func (r *Router) enqueue(ev event) {
	select {
	case r.events <- ev:
	case <-r.done:
	}
}

// Run procesa la cola hasta que ctx se cancela.
func (r *Router) Run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-r.events:
			r.handle(ctx, ev)
		}
	}
}

func (r *Router) handle(parent context.Context, ev event) {
	log := logging.ForEvent(ev.name).WithFields(ev.fields)

	defer func() {
		if rec := recover(); rec != nil {
			log.WithField("panic", rec).Error("panic en handler")
		}
	}()

	ctx, cancel := context.WithTimeout(logging.WithEntry(parent, log), r.timeout)
	defer cancel()

	start := time.Now()
	err := ev.run(ctx)
	log = log.WithField("took", time.Since(start))
	if err == nil {
		log.Debug("ok")
		return
	}

	var verr *service.Error
	switch {
	case errors.As(err, &verr):
		log.WithField("kind", verr.Kind.String()).WithError(err).Error("evento abortado")
	case errors.Is(err, service.ErrStaleReference):
		log.WithError(err).Warn("referencia vencida")
	default:
		log.WithError(err).Error("evento falló")
	}
}
