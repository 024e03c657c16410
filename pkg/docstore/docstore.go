// Package docstore implements an optional Postgres manifest mirror: a
// best-effort copy of each indexed document's metadata into a relational
// table, written once per build inside a single transaction via the
// shared pkg/postgres client's InTx helper.
package docstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/corvidx/invidx/pkg/postgres"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS invidx_documents (
	doc_id     INTEGER PRIMARY KEY,
	raw_doc_id TEXT NOT NULL,
	title      TEXT NOT NULL,
	url        TEXT NOT NULL
)`

const insertRowSQL = `
INSERT INTO invidx_documents (doc_id, raw_doc_id, title, url)
VALUES ($1, $2, $3, $4)
ON CONFLICT (doc_id) DO UPDATE SET raw_doc_id = $2, title = $3, url = $4`

type row struct {
	docID    uint32
	rawDocID string
	title    string
	url      string
}

// Mirror buffers document metadata rows during a build and writes them to
// Postgres as a single transaction at Commit. A nil *Mirror is valid and
// every method on it is a safe no-op, so callers can construct one only
// when Postgres is configured and reachable.
type Mirror struct {
	client *postgres.Client
	rows   []row
}

// New wraps client as a manifest mirror.
func New(client *postgres.Client) *Mirror {
	return &Mirror{client: client}
}

// AddRow buffers one document's metadata for the next Commit.
func (m *Mirror) AddRow(docID uint32, rawDocID, title, url string) {
	if m == nil {
		return
	}
	m.rows = append(m.rows, row{docID: docID, rawDocID: rawDocID, title: title, url: url})
}

// Commit writes every buffered row to Postgres inside one transaction and
// clears the buffer. A failure here is never fatal to a build; callers
// should log and continue.
func (m *Mirror) Commit(ctx context.Context) error {
	if m == nil || m.client == nil || len(m.rows) == 0 {
		return nil
	}
	err := m.client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, createTableSQL); err != nil {
			return fmt.Errorf("creating invidx_documents table: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, insertRowSQL)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range m.rows {
			if _, err := stmt.ExecContext(ctx, r.docID, r.rawDocID, r.title, r.url); err != nil {
				return fmt.Errorf("inserting doc %d: %w", r.docID, err)
			}
		}
		return nil
	})
	m.rows = nil
	return err
}
