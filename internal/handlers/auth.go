package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/minesweeper-classic/internal/config"
	"github.com/vancomm/minesweeper-classic/internal/middleware"
	"github.com/vancomm/minesweeper-classic/internal/repository"
)

type PlayerStore interface {
	CreatePlayer(ctx context.Context, params repository.CreatePlayerParams) (*repository.Player, error)
	FetchPlayer(ctx context.Context, username string) (*repository.Player, error)
}

type Auth struct {
	logger  *slog.Logger
	players PlayerStore
	cookies *config.Cookies
	cost    int
}

func NewAuth(logger *slog.Logger, players PlayerStore, cookies *config.Cookies) *Auth {
	return &Auth{
		logger:  logger,
		players: players,
		cookies: cookies,
		cost:    bcrypt.DefaultCost,
	}
}

type PlayerInfo struct {
	PlayerID int64  `json:"player_id"`
	Username string `json:"username"`
}

type Status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *PlayerInfo `json:"player,omitempty"`
}

type AuthDTO struct {
	Username string `schema:"username,required"`
	Password string `schema:"password,required"`
}

var (
	ErrBadAuthBody        = errors.New("request body must contain url-encoded username and password")
	ErrBadPasswordTooLong = errors.New("password too long")
	ErrUsernameTaken      = errors.New("username taken")
	ErrBadCredentials     = errors.New("invalid username or password")
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

func parseAuthDTO(r *http.Request) (AuthDTO, error) {
	var dto AuthDTO
	if err := r.ParseForm(); err != nil {
		return dto, ErrBadAuthBody
	}
	if err := decoder.Decode(&dto, r.PostForm); err != nil {
		return dto, ErrBadAuthBody
	}
	if dto.Username == "" || dto.Password == "" {
		return dto, ErrBadAuthBody
	}
	if len(dto.Password) > maxPasswordBytes {
		return dto, ErrBadPasswordTooLong
	}
	return dto, nil
}

func (a *Auth) login(w http.ResponseWriter, player *repository.Player) {
	claims := config.NewPlayerClaims(player.PlayerID, player.Username)
	if err := a.cookies.Refresh(w, claims); err != nil {
		internalError(w, a.logger, "unable to set auth cookies", "error", err)
		return
	}
	sendJSONOrLog(w, a.logger, PlayerInfo{player.PlayerID, player.Username})
}

func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	dto, err := parseAuthDTO(r)
	if err != nil {
		sendError(w, a.logger, http.StatusBadRequest, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), a.cost)
	if err != nil {
		internalError(w, a.logger, "unable to hash password", "error", err)
		return
	}

	player, err := a.players.CreatePlayer(r.Context(), repository.CreatePlayerParams{
		Username:     dto.Username,
		PasswordHash: hash,
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		sendError(w, a.logger, http.StatusConflict, ErrUsernameTaken)
		return
	}
	if err != nil {
		internalError(w, a.logger, "unable to insert player", "error", err)
		return
	}

	a.logger.Info("player registered", slog.Int64("player_id", player.PlayerID))
	a.login(w, player)
}

func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	dto, err := parseAuthDTO(r)
	if err != nil {
		sendError(w, a.logger, http.StatusBadRequest, err)
		return
	}

	player, err := a.players.FetchPlayer(r.Context(), dto.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		sendError(w, a.logger, http.StatusUnauthorized, ErrBadCredentials)
		return
	}
	if err != nil {
		internalError(w, a.logger, "unable to fetch player", "error", err)
		return
	}

	err = bcrypt.CompareHashAndPassword(player.PasswordHash, []byte(dto.Password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		sendError(w, a.logger, http.StatusUnauthorized, ErrBadCredentials)
		return
	}
	if err != nil {
		internalError(w, a.logger, "bcrypt compare error", "error", err)
		return
	}

	a.login(w, player)
}

func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// Status reports the current player and extends the login on every call.
func (a *Auth) Status(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		a.cookies.Clear(w)
		sendJSONOrLog(w, a.logger, Status{LoggedIn: false})
		return
	}

	a.logger.Debug("refresh cookies", slog.Int64("player_id", claims.PlayerID))
	if err := a.cookies.Refresh(w, config.NewPlayerClaims(claims.PlayerID, claims.Username)); err != nil {
		internalError(w, a.logger, "unable to refresh auth cookies", "error", err)
		return
	}

	sendJSONOrLog(w, a.logger, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{claims.PlayerID, claims.Username},
	})
}
