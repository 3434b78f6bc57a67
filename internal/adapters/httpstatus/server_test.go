package httpstatus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/reaction-roles-bot/internal/app/service"
	"github.com/jose-valero/reaction-roles-bot/internal/infra/storage"
)

type fakeStats struct{ s service.Stats }

func (f fakeStats) Stats() service.Stats { return f.s }

type fakeDB struct{ err error }

func (f fakeDB) PingContext(context.Context) error { return f.err }

type fakeGrants struct {
	gotLimit int
	rows     []storage.Grant
	err      error
}

func (f *fakeGrants) ListByMember(_ context.Context, _, _ string, limit int) ([]storage.Grant, error) {
	f.gotLimit = limit
	return f.rows, f.err
}

func get(t *testing.T, s *Server, path string) (int, []byte) {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHealth(t *testing.T) {
	s := New(Options{Stats: fakeStats{}})
	code, body := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestReady(t *testing.T) {
	tests := []struct {
		name      string
		connected bool
		db        Pinger
		want      int
	}{
		{name: "todo ok", connected: true, db: fakeDB{}, want: http.StatusOK},
		{name: "sin db", connected: true, want: http.StatusOK},
		{name: "gateway caído", connected: false, want: http.StatusServiceUnavailable},
		{name: "db caída", connected: true, db: fakeDB{err: errors.New("down")}, want: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connected := tt.connected
			s := New(Options{Stats: fakeStats{}, Connected: func() bool { return connected }, DB: tt.db})
			code, _ := get(t, s, "/ready")
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestStats(t *testing.T) {
	s := New(Options{Stats: fakeStats{s: service.Stats{Drafts: 3, Published: 7}}})
	code, body := get(t, s, "/stats")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"drafts":3,"published":7}`, string(body))
}

func TestGrants(t *testing.T) {
	g := &fakeGrants{rows: []storage.Grant{{ID: 1, GuildID: "g", UserID: "u", RoleID: "r", Action: storage.ActionGrant}}}
	s := New(Options{Stats: fakeStats{}, Grants: g})

	code, body := get(t, s, "/grants/g/u?limit=500")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 100, g.gotLimit)

	var rows []storage.Grant
	require.NoError(t, json.Unmarshal(body, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "r", rows[0].RoleID)

	code, _ = get(t, s, "/grants/g/u?limit=abc")
	assert.Equal(t, http.StatusBadRequest, code)

	g.rows = nil
	code, body = get(t, s, "/grants/g/u")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 20, g.gotLimit)
	assert.JSONEq(t, `[]`, string(body))

	g.err = errors.New("boom")
	code, _ = get(t, s, "/grants/g/u")
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestGrantsDisabled(t *testing.T) {
	s := New(Options{Stats: fakeStats{}})
	code, _ := get(t, s, "/grants/g/u")
	assert.Equal(t, http.StatusNotFound, code)
}
