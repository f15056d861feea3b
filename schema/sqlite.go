package schema

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/GMaffio99/SPARQLPolicyTool/query"
	"github.com/GMaffio99/SPARQLPolicyTool/rdf"
)

// SQLiteDataset is a persistent Dataset backed by a single
// (subject, predicate, object, object_kind) table, so a dataset loaded
// once can be reused across CLI invocations without re-parsing Turtle
// into memory every time. domain/range/subClassesOf are plain SQL
// queries over that table; Select still joins naively, one triple
// pattern at a time, same as Memory.
type SQLiteDataset struct {
	db *sql.DB
}

const createTripleTable = `
CREATE TABLE IF NOT EXISTS triples (
	subject      TEXT NOT NULL,
	predicate    TEXT NOT NULL,
	object       TEXT NOT NULL,
	object_kind  TEXT NOT NULL, -- 'iri' | 'literal'
	lit_datatype TEXT NOT NULL DEFAULT '',
	lit_lang     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_triples_p ON triples(predicate);
CREATE INDEX IF NOT EXISTS idx_triples_s ON triples(subject);
`

// OpenSQLiteDataset opens (creating if needed) a SQLite-backed dataset at
// path. Use ":memory:" for an ephemeral instance in tests.
func OpenSQLiteDataset(path string) (*SQLiteDataset, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite dataset: %w", err)
	}
	if _, err := db.Exec(createTripleTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create triple table: %w", err)
	}
	return &SQLiteDataset{db: db}, nil
}

func (s *SQLiteDataset) Close() error { return s.db.Close() }

// LoadFacts inserts ground triples, replacing any existing content.
func (s *SQLiteDataset) LoadFacts(ctx context.Context, facts []query.Triple) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM triples"); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO triples
		(subject, predicate, object, object_kind, lit_datatype, lit_lang) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range facts {
		subj, ok := f.Subject.(rdf.IRI)
		if !ok {
			continue
		}
		pred, ok := f.Predicate.(rdf.IRI)
		if !ok {
			continue
		}
		switch o := f.Object.(type) {
		case rdf.IRI:
			if _, err := stmt.ExecContext(ctx, string(subj), string(pred), string(o), "iri", "", ""); err != nil {
				return err
			}
		case rdf.Literal:
			if _, err := stmt.ExecContext(ctx, string(subj), string(pred), o.Lexical, "literal", o.Datatype, o.Lang); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func (s *SQLiteDataset) Domain(ctx context.Context, p rdf.IRI) ([]rdf.IRI, error) {
	direct, err := s.objectIRIs(ctx, string(p), query.RDFSDomain)
	if err != nil {
		return nil, err
	}
	return s.closeOverSubClasses(ctx, direct)
}

func (s *SQLiteDataset) Range(ctx context.Context, p rdf.IRI) ([]rdf.IRI, error) {
	direct, err := s.objectIRIs(ctx, string(p), query.RDFSRange)
	if err != nil {
		return nil, err
	}
	return s.closeOverSubClasses(ctx, direct)
}

func (s *SQLiteDataset) objectIRIs(ctx context.Context, subject, predicate string) ([]rdf.IRI, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT object FROM triples WHERE subject = ? AND predicate = ? AND object_kind = 'iri'`,
		subject, predicate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rdf.IRI
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, err
		}
		out = append(out, rdf.IRI(o))
	}
	return out, rows.Err()
}

func (s *SQLiteDataset) SubClassesOf(ctx context.Context, classes []rdf.IRI) ([]rdf.IRI, error) {
	return s.closeOverSubClasses(ctx, classes)
}

func (s *SQLiteDataset) closeOverSubClasses(ctx context.Context, roots []rdf.IRI) ([]rdf.IRI, error) {
	seen := map[rdf.IRI]bool{}
	for _, r := range roots {
		seen[r] = true
	}
	for {
		changed := false
		rows, err := s.db.QueryContext(ctx,
			`SELECT subject, object FROM triples WHERE predicate = ? AND object_kind = 'iri'`,
			query.SubClassOf)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var sub, sup string
			if err := rows.Scan(&sub, &sup); err != nil {
				rows.Close()
				return nil, err
			}
			if seen[rdf.IRI(sup)] && !seen[rdf.IRI(sub)] {
				seen[rdf.IRI(sub)] = true
				changed = true
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
		if !changed {
			break
		}
	}
	out := make([]rdf.IRI, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	return out, nil
}

// Select evaluates pattern with one SQL query per triple, joined in
// Go — a deliberately unoptimized reference executor, matching Memory's
// contract but against the persistent backend.
func (s *SQLiteDataset) Select(ctx context.Context, pattern []query.Triple) ([]Binding, error) {
	bindings := []Binding{{}}
	for _, t := range pattern {
		facts, err := s.scan(ctx, t)
		if err != nil {
			return nil, err
		}
		var next []Binding
		for _, b := range bindings {
			for _, f := range facts {
				nb, ok := unify(b, t, f)
				if ok {
					next = append(next, nb)
				}
			}
		}
		bindings = next
		if len(bindings) == 0 {
			return nil, nil
		}
	}
	return bindings, nil
}

// scan fetches every stored triple; predicate/subject pushdown could
// narrow this using the pattern's ground positions, but correctness, not
// speed, is this reference implementation's job (see Non-goals).
func (s *SQLiteDataset) scan(ctx context.Context, _ query.Triple) ([]query.Triple, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT subject, predicate, object, object_kind, lit_datatype, lit_lang FROM triples`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []query.Triple
	for rows.Next() {
		var subj, pred, obj, kind, dt, lang string
		if err := rows.Scan(&subj, &pred, &obj, &kind, &dt, &lang); err != nil {
			return nil, err
		}
		var objNode rdf.NodeId
		if kind == "iri" {
			objNode = rdf.IRI(obj)
		} else {
			objNode = rdf.Literal{Lexical: obj, Datatype: dt, Lang: lang}
		}
		out = append(out, query.Triple{Subject: rdf.IRI(subj), Predicate: rdf.IRI(pred), Object: objNode})
	}
	return out, rows.Err()
}
