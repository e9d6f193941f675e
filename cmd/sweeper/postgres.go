package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dbUrl string) (*postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(dbUrl)
	if err != nil {
		return nil, err
	}
	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	return &postgres{db}, nil
}

func (pg *postgres) Ping(ctx context.Context) error {
	return pg.db.Ping(ctx)
}

func (pg *postgres) Close() {
	pg.db.Close()
}

type Player struct {
	PlayerId     int
	Username     string
	PasswordHash []byte
}

func (pg *postgres) CreatePlayer(
	ctx context.Context, username string, passwordHash []byte,
) (*Player, error) {
	var playerId int
	if err := pg.db.QueryRow(ctx, `
		INSERT INTO player (
			username, password_hash
		)
		VALUES (
			@username, @password_hash
		)
		RETURNING player_id`,
		pgx.NamedArgs{
			"username":      username,
			"password_hash": passwordHash,
		}).Scan(&playerId); err != nil {
		return nil, err
	}
	player := &Player{
		PlayerId: playerId,
		Username: username,
	}
	return player, nil
}

func (pg *postgres) GetPlayer(
	ctx context.Context, username string,
) (*Player, error) {
	rows, err := pg.db.Query(ctx, `
		SELECT player_id, username, password_hash
		FROM player
		WHERE username = $1;`,
		username)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Player])
}

func (pg *postgres) CreateSession(
	ctx context.Context, playerId *int, state *SolveState,
) (*SolveSession, error) {
	stateBuf, err := state.Bytes()
	if err != nil {
		return nil, err
	}
	var (
		sessionId int
		startedAt time.Time
	)
	if err := pg.db.QueryRow(ctx, `
		INSERT INTO solve_session (
			player_id, height, width, mine_count, status, moves, state
		)
		VALUES (
			@player_id, @height, @width, @mine_count, @status, @moves, @state
		)
		RETURNING solve_session_id, started_at;`,
		pgx.NamedArgs{
			"player_id":  playerId,
			"height":     state.Board.Height,
			"width":      state.Board.Width,
			"mine_count": state.Board.MineCount(),
			"status":     string(state.Status),
			"moves":      len(state.Moves),
			"state":      stateBuf,
		}).Scan(&sessionId, &startedAt); err != nil {
		return nil, err
	}
	session := &SolveSession{
		SessionId: sessionId,
		PlayerId:  playerId,
		State:     *state,
		StartedAt: startedAt,
	}
	return session, nil
}

func (pg *postgres) GetSession(
	ctx context.Context, sessionId int,
) (*SolveSession, error) {
	var (
		stateBuf  []byte
		playerId  *int
		startedAt time.Time
		endedAt   pgtype.Timestamptz
	)
	if err := pg.db.QueryRow(ctx, `
		SELECT player_id, state, started_at, ended_at
		FROM solve_session
		WHERE solve_session_id = $1;`,
		sessionId).Scan(
		&playerId, &stateBuf, &startedAt, &endedAt,
	); err != nil {
		return nil, err
	}
	state, err := DecodeSolveState(stateBuf)
	if err != nil {
		return nil, err
	}
	session := &SolveSession{
		SessionId: sessionId,
		PlayerId:  playerId,
		State:     *state,
		StartedAt: startedAt,
		EndedAt:   endedAt.Time,
	}
	return session, nil
}

func (pg *postgres) UpdateSession(
	ctx context.Context, session *SolveSession,
) error {
	stateBuf, err := session.State.Bytes()
	if err != nil {
		return err
	}
	var endedAt *time.Time
	if !session.EndedAt.IsZero() {
		endedAt = &session.EndedAt
	}
	_, err = pg.db.Exec(ctx, `
		UPDATE solve_session
		SET status = @status
			, moves = @moves
			, ended_at = @ended_at
			, state = @state
		WHERE solve_session_id = @solve_session_id;`,
		pgx.NamedArgs{
			"solve_session_id": session.SessionId,
			"status":           string(session.State.Status),
			"moves":            len(session.State.Moves),
			"ended_at":         endedAt,
			"state":            stateBuf,
		})
	return err
}
