package discord

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/reaction-roles-bot/internal/app/service"
	"github.com/jose-valero/reaction-roles-bot/internal/domain"
)

func TestCheckmark(t *testing.T) {
	got, err := Checkmark("white_check_mark")
	require.NoError(t, err)
	assert.Equal(t, "✅", got)

	got, err = Checkmark(":white_check_mark:")
	require.NoError(t, err)
	assert.Equal(t, "✅", got)

	_, err = Checkmark("no_existe_este_emoji")
	assert.Error(t, err)
}

func TestEmojiKey(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "🦀", want: "crab"},
		{raw: "✅", want: "white_check_mark"},
		{raw: "❤️", want: "heart"},
		{raw: "❤", want: "heart"},
		// :+1: no entra en el tag, se usa el siguiente alias
		{raw: "👍", want: "thumbsup"},
		{raw: "👍🏽", want: "thumbsup_tone3"},
		// sin alias: hex
		{raw: "ñ", want: "f1"},
		{raw: "rustacean:123456789012345678", want: "123456789012345678"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, emojiKey(tt.raw), tt.raw)
	}
}

func TestEmojiKeyDecodes(t *testing.T) {
	const roleID = "987654321098765432"
	dec := domain.NewDecoder(domain.SnowflakePattern)
	for _, raw := range []string{"🦀", "👍", "👍🏽", "ñ", "party:123456789012345678"} {
		key := emojiKey(raw)
		m := dec.Decode("elegí " + domain.Tag(key, roleID, "Rust"))
		assert.Equal(t, domain.Mapping{key: roleID}, m, raw)
	}
}

func TestGuildPermissions(t *testing.T) {
	const guild = "g1"
	roles := []*discordgo.Role{
		{ID: guild, Name: "@everyone", Permissions: discordgo.PermissionAddReactions},
		{ID: "r-mod", Name: "Mod", Permissions: discordgo.PermissionManageRoles},
		{ID: "r-admin", Name: "Admin", Permissions: discordgo.PermissionAdministrator},
	}

	caps := capabilities(guildPermissions(guild, "owner", "u1", roles, nil))
	assert.Equal(t, service.Capabilities{React: true}, caps)

	caps = capabilities(guildPermissions(guild, "owner", "u1", roles, []string{"r-mod"}))
	assert.Equal(t, service.Capabilities{AssignRoles: true, React: true}, caps)

	assert.Equal(t, int64(discordgo.PermissionAll), guildPermissions(guild, "owner", "u1", roles, []string{"r-admin"}))
	assert.Equal(t, int64(discordgo.PermissionAll), guildPermissions(guild, "owner", "owner", roles, nil))
}

func TestToRoles(t *testing.T) {
	got := toRoles("g1", []*discordgo.Role{
		{ID: "g1", Name: "@everyone", Position: 0},
		{ID: "r1", Name: "Bot", Position: 10},
		{ID: "r2", Name: "Rust", Position: 3},
	})
	require.Len(t, got, 2)
	assert.Equal(t, domain.Role{ID: "r1", Name: "Bot", Rank: -10}, got[0])
	// más arriba en la lista de Discord = puede actuar sobre los de abajo
	assert.True(t, domain.CanAct(domain.Member(got[0].Rank), got[1].Rank))
	assert.False(t, domain.CanAct(domain.Member(got[1].Rank), got[0].Rank))
}

func TestRestErr(t *testing.T) {
	assert.NoError(t, restErr("x", nil))

	notFound := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound, Status: "404 Not Found"}}
	assert.ErrorIs(t, restErr("message", notFound), service.ErrStaleReference)

	unknownRole := &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusBadRequest, Status: "400 Bad Request"},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownRole},
	}
	assert.ErrorIs(t, restErr("member edit", unknownRole), service.ErrStaleReference)

	forbidden := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden, Status: "403 Forbidden"}}
	err := restErr("member edit", forbidden)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, service.ErrStaleReference))
}

func TestUserLimiter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := newUserLimiter(5 * time.Second)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(5 * time.Second)
	assert.True(t, l.Allow("a"))

	off := newUserLimiter(0)
	assert.True(t, off.Allow("a"))
	assert.True(t, off.Allow("a"))
}

func TestRouterProcessesInOrder(t *testing.T) {
	r := NewRouter(nil, nil, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu  sync.Mutex
		got []int
		wg  sync.WaitGroup
	)
	wg.Add(3)
	for i := 0; i < 3; i++ {
		i := i
		r.enqueue(event{name: "test", run: func(ctx context.Context) error {
			defer wg.Done()
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			if i == 1 {
				panic("boom")
			}
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		}})
	}

	go r.Run(ctx)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 2}, got)
}

func TestRouterStopsEnqueueAfterRun(t *testing.T) {
	r := NewRouter(nil, nil, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Run(ctx)

	// con la cola llena y el worker parado, enqueue no se bloquea
	for i := 0; i < queueSize+1; i++ {
		r.enqueue(event{name: "test", run: func(context.Context) error { return nil }})
	}
}
