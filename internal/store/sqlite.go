package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/autoclass/internal/domain"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when no submission matches an id prefix.
var ErrNotFound = errors.New("submission not found")

// Store keeps the local history of submitted profiles
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSubmission stores sub with a fresh ID and timestamp and returns it
func (s *Store) RecordSubmission(sub domain.Submission) (*domain.Submission, error) {
	sub.ID = uuid.New().String()
	sub.CreatedAt = time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO submissions (id, qualified_name, status, error, created_at) VALUES (?, ?, ?, ?, ?)",
		sub.ID, sub.QualifiedName, string(sub.Status), sub.Error, sub.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}

	for _, st := range sub.Statements {
		_, err := tx.Exec(
			"INSERT INTO submission_statements (submission_id, position, statement, applied) VALUES (?, ?, ?, ?)",
			sub.ID, st.Position, st.Statement, st.Applied,
		)
		if err != nil {
			return nil, fmt.Errorf("insert statement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit submission: %w", err)
	}
	return &sub, nil
}

// ListSubmissions returns recent submissions, newest first, without statements
func (s *Store) ListSubmissions(limit int) ([]domain.Submission, error) {
	rows, err := s.db.Query(
		"SELECT id, qualified_name, status, error, created_at FROM submissions ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		var sub domain.Submission
		if err := rows.Scan(&sub.ID, &sub.QualifiedName, &sub.Status, &sub.Error, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

// GetSubmission finds a submission by ID prefix and loads its statements
func (s *Store) GetSubmission(idPrefix string) (*domain.Submission, error) {
	var sub domain.Submission
	err := s.db.QueryRow(
		"SELECT id, qualified_name, status, error, created_at FROM submissions WHERE id LIKE ? ORDER BY created_at DESC LIMIT 1",
		idPrefix+"%",
	).Scan(&sub.ID, &sub.QualifiedName, &sub.Status, &sub.Error, &sub.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idPrefix)
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}

	statements, err := s.getStatements(sub.ID)
	if err != nil {
		return nil, err
	}
	sub.Statements = statements

	return &sub, nil
}

func (s *Store) getStatements(submissionID string) ([]domain.StatementRecord, error) {
	rows, err := s.db.Query(
		"SELECT position, statement, applied FROM submission_statements WHERE submission_id = ? ORDER BY position",
		submissionID,
	)
	if err != nil {
		return nil, fmt.Errorf("get statements: %w", err)
	}
	defer rows.Close()

	var out []domain.StatementRecord
	for rows.Next() {
		var st domain.StatementRecord
		if err := rows.Scan(&st.Position, &st.Statement, &st.Applied); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		out = append(out, st)
	}

	return out, rows.Err()
}
