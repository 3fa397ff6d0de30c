// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/danielhkuo/pollroom/auth"
	"github.com/danielhkuo/pollroom/identity"
	"github.com/danielhkuo/pollroom/models"
)

// Sentinel errors for expected conditions. Anything else returned by a
// Store method is a transient storage failure and may be retried.
var (
	ErrPollNotFound  = errors.New("poll not found")
	ErrStaleOption   = errors.New("option does not belong to poll")
	ErrDuplicateVote = errors.New("duplicate vote")
)

// Store owns poll, option and vote persistent state.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetPollByCode returns a poll and its options, ordered by position.
func (s *Store) GetPollByCode(ctx context.Context, code string) (models.Poll, []models.Option, error) {
	var poll models.Poll
	err := s.db.QueryRowContext(ctx, `
		SELECT id, code, question, created_at FROM poll WHERE code = $1
	`, code).Scan(&poll.ID, &poll.Code, &poll.Question, &poll.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Poll{}, nil, ErrPollNotFound
	}
	if err != nil {
		return models.Poll{}, nil, fmt.Errorf("failed to query poll: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, poll_id, label, position, vote_count
		FROM option
		WHERE poll_id = $1
		ORDER BY position
	`, poll.ID)
	if err != nil {
		return models.Poll{}, nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	var options []models.Option
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Label, &opt.Position, &opt.VoteCount); err != nil {
			return models.Poll{}, nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return models.Poll{}, nil, fmt.Errorf("failed to read options: %w", err)
	}

	return poll, options, nil
}

// HasVoted reports whether a vote fact already exists for either half
// of the fairness key: address reused OR token reused.
//
// This is a fast-path pre-check only. The UNIQUE constraints on the
// vote table remain the authoritative guard; a concurrent voter can
// slip through the window between this check and ApplyVote.
func (s *Store) HasVoted(ctx context.Context, pollID string, key identity.FairnessKey) (bool, error) {
	var voted bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM vote
			WHERE poll_id = $1 AND (source_address = $2 OR voter_token = $3)
		)
	`, pollID, key.SourceAddress, key.VoterToken).Scan(&voted)
	if err != nil {
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return voted, nil
}

// FindVote returns the option a token voted for, if any. Used by the
// poll view to restore "already voted" UI state.
func (s *Store) FindVote(ctx context.Context, pollID, voterToken string) (string, bool, error) {
	var optionID string
	err := s.db.QueryRowContext(ctx, `
		SELECT option_id FROM vote WHERE poll_id = $1 AND voter_token = $2
	`, pollID, voterToken).Scan(&optionID)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up vote: %w", err)
	}
	return optionID, true, nil
}

// ApplyVote atomically increments the option counter and records the
// vote fact, all inside one transaction.
//
// The increment is a single UPDATE ... SET vote_count = vote_count + 1,
// so two concurrent callers can never both observe a counter value that
// misses the other's increment - the statement itself is the
// serialization point, and READ COMMITTED is sufficient. Zero rows
// updated means the option does not exist or belongs to another poll.
//
// Returns the post-increment count.
func (s *Store) ApplyVote(ctx context.Context, pollID, optionID string, key identity.FairnessKey) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var newCount int
	err = tx.QueryRowContext(ctx, `
		UPDATE option
		SET vote_count = vote_count + 1
		WHERE id = $1 AND poll_id = $2
		RETURNING vote_count
	`, optionID, pollID).Scan(&newCount)

	if err == sql.ErrNoRows {
		return 0, ErrStaleOption
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}

	voteID, err := auth.GenerateID(16)
	if err != nil {
		return 0, fmt.Errorf("failed to generate vote ID: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote (id, poll_id, option_id, source_address, voter_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voteID, pollID, optionID, key.SourceAddress, key.VoterToken, time.Now())

	if err != nil {
		// The constraint violation is the authoritative duplicate
		// detector; the transaction rolls back and the counter
		// increment never lands.
		if isUniqueViolation(err) {
			return 0, ErrDuplicateVote
		}
		return 0, fmt.Errorf("failed to insert vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit vote: %w", err)
	}

	return newCount, nil
}

// GetSnapshot reads the current counts for a poll and derives
// percentages. No locking: an eventually-consistent read is fine for
// display, and percentages are never stored.
func (s *Store) GetSnapshot(ctx context.Context, code string) (models.ResultSnapshot, error) {
	poll, options, err := s.GetPollByCode(ctx, code)
	if err != nil {
		return models.ResultSnapshot{}, err
	}
	return BuildSnapshot(poll.Code, options), nil
}

// BuildSnapshot derives a ResultSnapshot from option counts.
// With zero total votes every percentage is 0.
func BuildSnapshot(code string, options []models.Option) models.ResultSnapshot {
	snap := models.ResultSnapshot{
		PollCode: code,
		Options:  make([]models.OptionResult, 0, len(options)),
	}

	for _, opt := range options {
		snap.TotalVotes += opt.VoteCount
	}

	for _, opt := range options {
		result := models.OptionResult{
			OptionID:  opt.ID,
			Label:     opt.Label,
			VoteCount: opt.VoteCount,
		}
		if snap.TotalVotes > 0 {
			pct := float64(opt.VoteCount) / float64(snap.TotalVotes) * 100
			result.Percentage = math.Round(pct*10) / 10
		}
		snap.Options = append(snap.Options, result)
	}

	return snap
}

// isUniqueViolation recognizes uniqueness-constraint errors from both
// supported drivers: pq error class 23505, sqlite's message text.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
