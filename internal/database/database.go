package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

const tableName = "simulations"

const resultColumns = "id, run_id, created_at, player_style, first_move_selection, n_players, n_cards, won, reason, cards_remaining, cards_in_deck_remaining, turns"

type Service struct {
	db         *sql.DB
	m          *sync.Mutex
	driver     string
	table_name string
}

// New opens the results database and creates the table if needed.
func New(driver, dsn string) (*Service, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	sqlStmt := `
	create table if not exists ` + tableName + ` (
		id text not null primary key,
		run_id text not null,
		created_at text,
		player_style text,
		first_move_selection text,
		n_players integer,
		n_cards integer,
		won boolean,
		reason text,
		cards_remaining integer,
		cards_in_deck_remaining integer,
		turns integer
	);
	`
	if _, err = db.Exec(sqlStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &Service{
		db:         db,
		m:          &sync.Mutex{},
		driver:     driver,
		table_name: tableName,
	}, nil
}

func (s *Service) Close() error {
	return s.db.Close()
}

func (s *Service) TableName() string {
	return s.table_name
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Service) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (GameResult, error) {
	var result GameResult
	err := row.Scan(
		&result.ID,
		&result.RunID,
		&result.CreatedAt,
		&result.PlayerStyle,
		&result.FirstMoveSelection,
		&result.NPlayers,
		&result.NCards,
		&result.Won,
		&result.Reason,
		&result.CardsRemaining,
		&result.CardsInDeckRemaining,
		&result.Turns)
	return result, err
}

func (s *Service) query(query string, args ...any) ([]GameResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []GameResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func (s *Service) GetAll() ([]GameResult, error) {
	return s.query("SELECT " + resultColumns + " FROM " + s.table_name + " ORDER BY created_at, id")
}

func (s *Service) GetByID(id string) (GameResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	row := s.db.QueryRow(s.rebind("SELECT "+resultColumns+" FROM "+s.table_name+" WHERE id = ?"), id)
	result, err := scanResult(row)
	if err != nil {
		return GameResult{}, err
	}
	return result, nil
}

// GetByRun returns every game of one simulation run, or sql.ErrNoRows.
func (s *Service) GetByRun(runID string) ([]GameResult, error) {
	results, err := s.query("SELECT "+resultColumns+" FROM "+s.table_name+" WHERE run_id = ? ORDER BY created_at, id", runID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, sql.ErrNoRows
	}
	return results, nil
}

// GetByStrategy returns every game played with a player style, or sql.ErrNoRows.
func (s *Service) GetByStrategy(style string) ([]GameResult, error) {
	results, err := s.query("SELECT "+resultColumns+" FROM "+s.table_name+" WHERE player_style = ? ORDER BY created_at, id", style)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, sql.ErrNoRows // No results found
	}
	return results, nil
}

func (s *Service) Insert(result GameResult) error {
	s.m.Lock()
	defer s.m.Unlock()
	_, err := s.db.Exec(s.rebind("INSERT INTO "+s.table_name+
		" ("+resultColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		result.ID,
		result.RunID,
		result.CreatedAt,
		result.PlayerStyle,
		result.FirstMoveSelection,
		result.NPlayers,
		result.NCards,
		result.Won,
		result.Reason,
		result.CardsRemaining,
		result.CardsInDeckRemaining,
		result.Turns)

	if err != nil {
		return err
	}

	return nil
}

// Stats aggregates win rates per strategy, first move selection and table size.
func (s *Service) Stats() ([]StrategyStats, error) {
	s.m.Lock()
	defer s.m.Unlock()
	rows, err := s.db.Query(`SELECT player_style, first_move_selection, n_players,
		COUNT(*), SUM(CASE WHEN won THEN 1 ELSE 0 END), AVG(cards_remaining * 1.0)
		FROM ` + s.table_name + `
		GROUP BY player_style, first_move_selection, n_players
		ORDER BY player_style, first_move_selection, n_players`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []StrategyStats
	for rows.Next() {
		var st StrategyStats
		if err := rows.Scan(
			&st.PlayerStyle,
			&st.FirstMoveSelection,
			&st.NPlayers,
			&st.Games,
			&st.Won,
			&st.AvgCardsRemaining); err != nil {
			return nil, err
		}
		if st.Games > 0 {
			st.WinRate = float64(st.Won) / float64(st.Games)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
