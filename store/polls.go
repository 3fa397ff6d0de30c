// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/danielhkuo/pollroom/auth"
	"github.com/danielhkuo/pollroom/models"
)

// codeAttempts bounds retries on poll-code collisions.
const codeAttempts = 10

// CreatePoll inserts a poll with its options in one transaction and
// returns the stored rows. Input validation is the caller's job; this
// only guarantees a unique code and consistent option positions.
func (s *Store) CreatePoll(ctx context.Context, question string, optionLabels []string) (models.Poll, []models.Option, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		poll, options, err := s.insertPoll(ctx, question, optionLabels)
		if err == nil {
			return poll, options, nil
		}
		if !isUniqueViolation(err) {
			return models.Poll{}, nil, err
		}
		// Code collision, roll a new one.
	}
	return models.Poll{}, nil, fmt.Errorf("failed to generate unique poll code after %d attempts", codeAttempts)
}

func (s *Store) insertPoll(ctx context.Context, question string, optionLabels []string) (models.Poll, []models.Option, error) {
	pollID, err := auth.GenerateID(16)
	if err != nil {
		return models.Poll{}, nil, fmt.Errorf("failed to generate poll ID: %w", err)
	}

	poll := models.Poll{
		ID:        pollID,
		Code:      auth.GeneratePollCode(),
		Question:  question,
		CreatedAt: time.Now(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Poll{}, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll (id, code, question, created_at)
		VALUES ($1, $2, $3, $4)
	`, poll.ID, poll.Code, poll.Question, poll.CreatedAt)
	if err != nil {
		return models.Poll{}, nil, err
	}

	options := make([]models.Option, 0, len(optionLabels))
	for i, label := range optionLabels {
		optionID, err := auth.GenerateID(12)
		if err != nil {
			return models.Poll{}, nil, fmt.Errorf("failed to generate option ID: %w", err)
		}

		opt := models.Option{
			ID:       optionID,
			PollID:   poll.ID,
			Label:    label,
			Position: i,
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO option (id, poll_id, label, position, vote_count)
			VALUES ($1, $2, $3, $4, 0)
		`, opt.ID, opt.PollID, opt.Label, opt.Position)
		if err != nil {
			return models.Poll{}, nil, fmt.Errorf("failed to insert option: %w", err)
		}

		options = append(options, opt)
	}

	if err := tx.Commit(); err != nil {
		return models.Poll{}, nil, fmt.Errorf("failed to commit poll: %w", err)
	}

	return poll, options, nil
}
