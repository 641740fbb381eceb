package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minesweeper-classic/internal/mines"
)

// GameRecord is the result of one finished game. The board itself is
// never stored.
type GameRecord struct {
	GameRecordID int64              `db:"game_record_id"`
	SessionID    string             `db:"session_id"`
	PlayerID     *int64             `db:"player_id"`
	RowCount     int32              `db:"row_count"`
	ColCount     int32              `db:"col_count"`
	MineCount    int32              `db:"mine_count"`
	Won          bool               `db:"won"`
	StartedAt    time.Time          `db:"started_at"`
	EndedAt      time.Time          `db:"ended_at"`
	CreatedAt    pgtype.Timestamptz `db:"created_at"`
}

type CreateGameRecordParams struct {
	SessionID string
	PlayerID  *int64
	Params    mines.GameParams
	Won       bool
	StartedAt time.Time
	EndedAt   time.Time
}

func (q *Queries) CreateGameRecord(
	ctx context.Context, params CreateGameRecordParams,
) (*GameRecord, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_record (
			session_id, player_id, row_count, col_count, mine_count,
			won, started_at, ended_at
		)
		VALUES (
			@session_id, @player_id, @row_count, @col_count, @mine_count,
			@won, @started_at, @ended_at
		)
		RETURNING *`,
		pgx.NamedArgs{
			"session_id": params.SessionID,
			"player_id":  params.PlayerID,
			"row_count":  params.Params.Rows,
			"col_count":  params.Params.Cols,
			"mine_count": params.Params.Mines,
			"won":        params.Won,
			"started_at": params.StartedAt,
			"ended_at":   params.EndedAt,
		},
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameRecord])
}

type Highscore struct {
	SessionID  string  `db:"session_id" json:"session_id"`
	Username   *string `db:"username" json:"username"`
	Rows       int     `db:"row_count" json:"rows"`
	Cols       int     `db:"col_count" json:"cols"`
	Mines      int     `db:"mine_count" json:"mines"`
	PlaytimeMs float64 `db:"playtime_ms" json:"playtime_ms"`
}

type HighscoreFilter struct {
	Username   *string
	PlayerID   *int64
	GameParams *mines.GameParams
	Limit      int
}

func (f HighscoreFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Username != nil {
		clauses = append(clauses, "username = @username")
		args["username"] = *f.Username
	}
	if f.PlayerID != nil {
		clauses = append(clauses, "player_id = @player_id")
		args["player_id"] = *f.PlayerID
	}
	if f.GameParams != nil {
		clauses = append(
			clauses,
			"row_count = @row_count",
			"col_count = @col_count",
			"mine_count = @mine_count",
		)
		args["row_count"] = f.GameParams.Rows
		args["col_count"] = f.GameParams.Cols
		args["mine_count"] = f.GameParams.Mines
	}
	return strings.Join(clauses, " AND "), args
}

const highscoresQuery = `
	SELECT
		session_id,
		username,
		row_count,
		col_count,
		mine_count,
		(
			extract('epoch' from ended_at) -
			extract('epoch' from started_at)
		) * 1000 playtime_ms
	FROM game_record
		LEFT OUTER JOIN player using (player_id)
	WHERE
		won = true`

func (f HighscoreFilter) Query() (string, pgx.NamedArgs) {
	query := highscoresQuery

	whereClause, args := f.WhereClause()
	if whereClause != "" {
		query += " AND " + whereClause
	}

	query += " ORDER BY playtime_ms"

	if f.Limit > 0 {
		query += " LIMIT @limit"
		args["limit"] = f.Limit
	}

	return query, args
}

func (q *Queries) GetHighscores(
	ctx context.Context, filter HighscoreFilter,
) ([]Highscore, error) {
	query, args := filter.Query()
	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}
