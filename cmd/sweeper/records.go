package main

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
)

type SolveRecord struct {
	SessionId  int     `json:"session_id"`
	Username   *string `json:"username"`
	Height     int     `json:"height"`
	Width      int     `json:"width"`
	MineCount  int     `json:"mine_count"`
	Moves      int     `json:"moves"`
	PlaytimeMs float64 `json:"playtime_ms"`
}

type SolveRecordFilters struct {
	username *string
	height   *int
	width    *int
}

func (f SolveRecordFilters) WhereClause() (string, pgx.NamedArgs) {
	args := pgx.NamedArgs{}
	whereClauses := []string{}
	if f.username != nil {
		args["username"] = *f.username
		whereClauses = append(whereClauses, "username = @username")
	}
	if f.height != nil && f.width != nil {
		args["height"] = *f.height
		args["width"] = *f.width
		whereClauses = append(whereClauses, "height = @height", "width = @width")
	}
	if len(whereClauses) == 0 {
		return "", args
	}
	return strings.Join(whereClauses, " and "), args
}

type SolveRecordsOption = func(*SolveRecordFilters) error

func SolveRecordsForPlayer(username string) SolveRecordsOption {
	return func(f *SolveRecordFilters) error {
		f.username = &username
		return nil
	}
}

func SolveRecordsForBoard(height, width int) SolveRecordsOption {
	return func(f *SolveRecordFilters) error {
		f.height = &height
		f.width = &width
		return nil
	}
}

// getSolveRecords lists won sessions, fastest solves first.
func getSolveRecords(
	ctx context.Context, options ...SolveRecordsOption,
) ([]SolveRecord, error) {
	filters := &SolveRecordFilters{}
	for _, op := range options {
		err := op(filters)
		if err != nil {
			return nil, err
		}
	}

	sql := `
	select
		solve_session_id session_id
		, username
		, height
		, width
		, mine_count
		, moves
		, (
			extract('epoch' from ended_at) - extract('epoch' from started_at)
		) * 1000 playtime_ms
	from solve_session
		left outer join player using (player_id)
	where
		status = 'won'
		and ended_at is not null`

	whereClause, args := filters.WhereClause()
	if whereClause != "" {
		sql += " and " + whereClause
	}

	sql += " order by moves, playtime_ms"

	rows, err := pg.db.Query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[SolveRecord])
}
