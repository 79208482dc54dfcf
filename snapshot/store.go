// Package snapshot implements a disk-backed recorder of MPS debug
// snapshots: chop-thresholded full-state-vectors and probability
// distributions, labeled and keyed by shot number, for the
// debugging/inspection use spec.md §4.3.11 calls out ("intended for
// debugging/snapshots"). It is adapted from the teacher's sqlite-backed
// DiskMatrix, repurposed from a disk-resident sparse matrix to an
// append-only snapshot log.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	tableVector = "vec"
	tableProb   = "prob"
)

// Store is a sqlite-backed log of named, shot-indexed snapshots.
type Store struct {
	Path string
	db   *sql.DB
}

// Open creates (or truncates) the sqlite database at path and prepares its
// schema.
func Open(path string) (*Store, error) {
	db, err := newDB(path)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot: Open")
	}
	return &Store{Path: path, db: db}, nil
}

// Close closes the underlying database connection. The file itself is left
// on disk, unlike the teacher's DiskMatrix.Close, since a snapshot store is
// meant to be inspected after the run that produced it.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordVector appends a full-state-vector snapshot under label/shot
// (§4.3.11's full_state_vector, chopped by the caller's Config before being
// handed here).
func (s *Store) RecordVector(label string, shot int, v []complex128) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for i, c := range v {
		sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (label, shot, idx, re, im) VALUES (?, ?, ?, ?, ?)`, tableVector)
		if _, err := s.db.ExecContext(ctx, sqlStr, label, shot, i, real(c), imag(c)); err != nil {
			return errors.Wrapf(err, "snapshot: RecordVector %q shot %d idx %d", label, shot, i)
		}
	}
	return nil
}

// ReadVector reconstructs a previously recorded full-state-vector snapshot.
// dim must be the expected vector length (2^N); entries never written
// default to zero, matching a chopped-to-zero component.
func (s *Store) ReadVector(label string, shot, dim int) ([]complex128, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT idx, re, im FROM %s WHERE label=? AND shot=?`, tableVector)
	rows, err := s.db.QueryContext(ctx, sqlStr, label, shot)
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot: ReadVector %q shot %d", label, shot)
	}
	defer rows.Close()

	out := make([]complex128, dim)
	for rows.Next() {
		var idx int
		var re, im float64
		if err := rows.Scan(&idx, &re, &im); err != nil {
			return nil, errors.Wrapf(err, "snapshot: ReadVector %q shot %d", label, shot)
		}
		if idx < 0 || idx >= dim {
			return nil, errors.Errorf("snapshot: ReadVector %q shot %d: index %d out of range for dim %d", label, shot, idx, dim)
		}
		out[idx] = complex(re, im)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "snapshot: ReadVector %q shot %d", label, shot)
	}
	return out, nil
}

// RecordProbabilities appends a probability-distribution snapshot under
// label/shot (§4.3.7's probabilities).
func (s *Store) RecordProbabilities(label string, shot int, p []float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for i, v := range p {
		sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (label, shot, idx, p) VALUES (?, ?, ?, ?)`, tableProb)
		if _, err := s.db.ExecContext(ctx, sqlStr, label, shot, i, v); err != nil {
			return errors.Wrapf(err, "snapshot: RecordProbabilities %q shot %d idx %d", label, shot, i)
		}
	}
	return nil
}

// ReadProbabilities reconstructs a previously recorded probability-
// distribution snapshot.
func (s *Store) ReadProbabilities(label string, shot, dim int) ([]float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT idx, p FROM %s WHERE label=? AND shot=?`, tableProb)
	rows, err := s.db.QueryContext(ctx, sqlStr, label, shot)
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot: ReadProbabilities %q shot %d", label, shot)
	}
	defer rows.Close()

	out := make([]float64, dim)
	for rows.Next() {
		var idx int
		var p float64
		if err := rows.Scan(&idx, &p); err != nil {
			return nil, errors.Wrapf(err, "snapshot: ReadProbabilities %q shot %d", label, shot)
		}
		if idx < 0 || idx >= dim {
			return nil, errors.Errorf("snapshot: ReadProbabilities %q shot %d: index %d out of range for dim %d", label, shot, idx, dim)
		}
		out[idx] = p
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "snapshot: ReadProbabilities %q shot %d", label, shot)
	}
	return out, nil
}

// Labels returns the distinct snapshot labels recorded so far, across both
// vector and probability tables.
func (s *Store) Labels() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT DISTINCT label FROM %s UNION SELECT DISTINCT label FROM %s ORDER BY label`, tableVector, tableProb)
	rows, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot: Labels")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, errors.Wrap(err, "snapshot: Labels")
		}
		out = append(out, label)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "snapshot: Labels")
	}
	return out, nil
}

func newDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}
	return db, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	sqlStr := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, tableVector)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	sqlStr = fmt.Sprintf(`CREATE TABLE %s (label TEXT, shot INTEGER, idx INTEGER, re REAL, im REAL, PRIMARY KEY (label, shot, idx)) STRICT`, tableVector)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}

	sqlStr = fmt.Sprintf(`DROP TABLE IF EXISTS %s`, tableProb)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	sqlStr = fmt.Sprintf(`CREATE TABLE %s (label TEXT, shot INTEGER, idx INTEGER, p REAL, PRIMARY KEY (label, shot, idx)) STRICT`, tableProb)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
