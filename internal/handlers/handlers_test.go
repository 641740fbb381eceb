package handlers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"log/slog"
	mrand "math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-classic/internal/config"
	"github.com/vancomm/minesweeper-classic/internal/middleware"
	"github.com/vancomm/minesweeper-classic/internal/mines"
	"github.com/vancomm/minesweeper-classic/internal/repository"
	"github.com/vancomm/minesweeper-classic/internal/session"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeRecords struct {
	mu      sync.Mutex
	created []repository.CreateGameRecordParams
	filters []repository.HighscoreFilter
	scores  []repository.Highscore
}

func (f *fakeRecords) CreateGameRecord(
	ctx context.Context, params repository.CreateGameRecordParams,
) (*repository.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, params)
	return &repository.GameRecord{
		GameRecordID: int64(len(f.created)),
		SessionID:    params.SessionID,
		PlayerID:     params.PlayerID,
		Won:          params.Won,
		StartedAt:    params.StartedAt,
		EndedAt:      params.EndedAt,
	}, nil
}

func (f *fakeRecords) GetHighscores(
	ctx context.Context, filter repository.HighscoreFilter,
) ([]repository.Highscore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	return f.scores, nil
}

func (f *fakeRecords) Created() []repository.CreateGameRecordParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]repository.CreateGameRecordParams(nil), f.created...)
}

type fakePlayers struct {
	mu      sync.Mutex
	players map[string]*repository.Player
}

func newFakePlayers() *fakePlayers {
	return &fakePlayers{players: make(map[string]*repository.Player)}
}

func (f *fakePlayers) CreatePlayer(
	ctx context.Context, params repository.CreatePlayerParams,
) (*repository.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.players[params.Username]; ok {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	p := &repository.Player{
		PlayerID:     int64(len(f.players) + 1),
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
	}
	f.players[p.Username] = p
	return p, nil
}

func (f *fakePlayers) FetchPlayer(ctx context.Context, username string) (*repository.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func newTestCookies(t *testing.T) *config.Cookies {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return config.NewCookiesWith(
		config.NewJWTFromKeys(key, &key.PublicKey), "", false, http.SameSiteLaxMode,
	)
}

func newTestGameHandler(t *testing.T) (*GameHandler, *fakeRecords) {
	t.Helper()
	ws, err := config.NewWebSocket()
	require.NoError(t, err)
	store := session.NewStore(testLogger, mrand.New(mrand.NewPCG(1, 2)), time.Hour)
	records := &fakeRecords{}
	return NewGameHandler(testLogger, store, records, ws, mines.DefaultParams), records
}

// withClaims runs the request as if the auth middleware had accepted it.
func withClaims(r *http.Request, playerID int64, username string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.CtxPlayerClaims,
		config.NewPlayerClaims(playerID, username))
	return r.WithContext(ctx)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
