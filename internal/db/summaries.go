package db

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ishaan812/farmer/internal/git"
)

// Summary is a stored work day summary.
type Summary struct {
	ID           string
	Date         string
	Signature    string
	ProviderID   string
	ProviderName string
	Verbosity    string
	CommitCount  int
	Summary      string
	DeepAnalysis bool
	CreatedAt    time.Time
}

// Signature identifies a day's commit set independent of order. A summary is reused
// only while the set of commits is unchanged.
func Signature(commits []git.Commit) string {
	hashes := make([]string, len(commits))
	for i, c := range commits {
		hashes[i] = c.Hash
	}
	sort.Strings(hashes)
	sum := sha256.Sum256([]byte(strings.Join(hashes, "\n")))
	return hex.EncodeToString(sum[:8])
}

// SummaryStore persists summaries in DuckDB.
type SummaryStore struct {
	db *sql.DB
}

func NewSummaryStore(db *sql.DB) *SummaryStore {
	return &SummaryStore{db: db}
}

// OpenSummaryStore opens the store at path (DefaultPath when empty).
func OpenSummaryStore(path string) (*SummaryStore, error) {
	database, err := GetDBForPath(path)
	if err != nil {
		return nil, err
	}
	return NewSummaryStore(database), nil
}

// Save inserts or replaces the summary for (s.Date, s.Signature).
func (st *SummaryStore) Save(s *Summary) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	_, err := st.db.Exec(`
		INSERT OR REPLACE INTO summaries
			(id, work_date, signature, provider_id, provider_name, verbosity, commit_count, summary, deep_analysis, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Date, s.Signature, s.ProviderID, s.ProviderName, s.Verbosity,
		s.CommitCount, s.Summary, s.DeepAnalysis, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

const summaryColumns = `id, work_date, signature, provider_id, provider_name, verbosity, commit_count, summary, deep_analysis, created_at`

func scanSummary(row interface{ Scan(...any) error }) (*Summary, error) {
	var s Summary
	var providerID, providerName, verbosity sql.NullString
	var commitCount sql.NullInt64
	var deep sql.NullBool
	if err := row.Scan(&s.ID, &s.Date, &s.Signature, &providerID, &providerName, &verbosity,
		&commitCount, &s.Summary, &deep, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.ProviderID = providerID.String
	s.ProviderName = providerName.String
	s.Verbosity = verbosity.String
	s.CommitCount = int(commitCount.Int64)
	s.DeepAnalysis = deep.Bool
	return &s, nil
}

// Get returns the summary for a day's exact commit set, or nil if none is stored.
func (st *SummaryStore) Get(date, signature string) (*Summary, error) {
	row := st.db.QueryRow(`SELECT `+summaryColumns+` FROM summaries WHERE work_date = ? AND signature = ?`, date, signature)
	s, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return s, nil
}

// ForDay returns the stored summary matching day's current commits.
func (st *SummaryStore) ForDay(day git.WorkDay) (*Summary, error) {
	return st.Get(day.Date, Signature(day.Commits))
}

// ForDays maps date to summary text for every day with a matching stored summary.
func (st *SummaryStore) ForDays(days []git.WorkDay) (map[string]string, error) {
	out := make(map[string]string)
	for _, d := range days {
		s, err := st.ForDay(d)
		if err != nil {
			return nil, err
		}
		if s != nil {
			out[d.Date] = s.Summary
		}
	}
	return out, nil
}

// List returns every stored summary in the inclusive date range, newest first.
// Empty bounds are open.
func (st *SummaryStore) List(since, until string) ([]Summary, error) {
	query := `SELECT ` + summaryColumns + ` FROM summaries WHERE 1=1`
	var args []any
	if since != "" {
		query += ` AND work_date >= ?`
		args = append(args, since)
	}
	if until != "" {
		query += ` AND work_date <= ?`
		args = append(args, until)
	}
	query += ` ORDER BY work_date DESC, created_at DESC`

	rows, err := st.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Delete removes all summaries for a date.
func (st *SummaryStore) Delete(date string) (int64, error) {
	res, err := st.db.Exec(`DELETE FROM summaries WHERE work_date = ?`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete summaries: %w", err)
	}
	return res.RowsAffected()
}
