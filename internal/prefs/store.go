// Package prefs persists the single user preference the editor carries: the
// "prefer transparent background" flag. It is read when a client boots and
// written on toggle; the dispatcher receives the value per call and never
// reads ambient state.
package prefs

import (
	"context"

	"studio/internal/infra"
	"studio/internal/sqlinline"
)

// DefaultOwner is used while the editor has no account model.
const DefaultOwner = "default"

// Store reads and writes the transparent-background preference.
type Store interface {
	TransparentBackground(ctx context.Context, owner string) (bool, error)
	SetTransparentBackground(ctx context.Context, owner string, value bool) error
}

// PGStore keeps preferences in Postgres.
type PGStore struct {
	sql infra.SQLExecutor
}

func NewPGStore(sql infra.SQLExecutor) *PGStore {
	return &PGStore{sql: sql}
}

func (s *PGStore) TransparentBackground(ctx context.Context, owner string) (bool, error) {
	if owner == "" {
		owner = DefaultOwner
	}
	row := s.sql.QueryRow(ctx, sqlinline.QSelectTransparentBackground, owner)
	var value bool
	if err := row.Scan(&value); err != nil {
		if infra.IsNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return value, nil
}

func (s *PGStore) SetTransparentBackground(ctx context.Context, owner string, value bool) error {
	if owner == "" {
		owner = DefaultOwner
	}
	_, err := s.sql.Exec(ctx, sqlinline.QUpsertTransparentBackground, owner, value)
	return err
}

var _ Store = (*PGStore)(nil)
