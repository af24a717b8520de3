package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	_ "modernc.org/sqlite"
)

type queryFilter struct {
	limit  int
	client string
	kind   string
}

func runQuery(out io.Writer, path, q string, f queryFilter) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()
	return query(out, db, q, f)
}

func query(out io.Writer, db *sql.DB, q string, f queryFilter) error {
	if f.limit <= 0 {
		f.limit = 20
	}
	switch q {
	case "snapshots":
		rows, err := db.Query(`SELECT tick,path,seed,width,height,length,chunks,entities FROM snapshots ORDER BY tick DESC LIMIT ?`, f.limit)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		return emit(out, rows, func() (any, error) {
			var r struct {
				Tick     int64  `json:"tick"`
				Path     string `json:"path"`
				Seed     int64  `json:"seed"`
				Width    int    `json:"width"`
				Height   int    `json:"height"`
				Length   int    `json:"length"`
				Chunks   int    `json:"chunks"`
				Entities int    `json:"entities"`
			}
			err := rows.Scan(&r.Tick, &r.Path, &r.Seed, &r.Width, &r.Height, &r.Length, &r.Chunks, &r.Entities)
			return r, err
		})

	case "ticks":
		rows, err := db.Query(`SELECT tick,session,digest,joins,leaves,edits,changed,paused FROM ticks ORDER BY tick DESC LIMIT ?`, f.limit)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		return emit(out, rows, func() (any, error) {
			var r struct {
				Tick    int64  `json:"tick"`
				Session string `json:"session"`
				Digest  string `json:"digest"`
				Joins   int    `json:"joins"`
				Leaves  int    `json:"leaves"`
				Edits   int    `json:"edits"`
				Changed int    `json:"changed"`
				Paused  bool   `json:"paused"`
			}
			err := rows.Scan(&r.Tick, &r.Session, &r.Digest, &r.Joins, &r.Leaves, &r.Edits, &r.Changed, &r.Paused)
			return r, err
		})

	case "edits":
		sqlText := `SELECT tick,seq,client_id,op,code,edit_json FROM edits ORDER BY tick DESC, seq DESC LIMIT ?`
		args := []any{f.limit}
		if f.client != "" {
			sqlText = `SELECT tick,seq,client_id,op,code,edit_json FROM edits WHERE client_id=? ORDER BY tick DESC, seq DESC LIMIT ?`
			args = []any{f.client, f.limit}
		}
		rows, err := db.Query(sqlText, args...)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		return emit(out, rows, func() (any, error) {
			var r struct {
				Tick     int64           `json:"tick"`
				Seq      int64           `json:"seq"`
				ClientID string          `json:"client_id"`
				Op       string          `json:"op"`
				Code     string          `json:"code,omitempty"`
				Edit     json.RawMessage `json:"edit"`
			}
			var raw string
			err := rows.Scan(&r.Tick, &r.Seq, &r.ClientID, &r.Op, &r.Code, &raw)
			r.Edit = json.RawMessage(raw)
			return r, err
		})

	case "incidents":
		sqlText := `SELECT tick,kind,total,session FROM incidents ORDER BY tick DESC LIMIT ?`
		args := []any{f.limit}
		if f.kind != "" {
			sqlText = `SELECT tick,kind,total,session FROM incidents WHERE kind=? ORDER BY tick DESC LIMIT ?`
			args = []any{f.kind, f.limit}
		}
		rows, err := db.Query(sqlText, args...)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		return emit(out, rows, func() (any, error) {
			var r struct {
				Tick    int64  `json:"tick"`
				Kind    string `json:"kind"`
				Total   int    `json:"total"`
				Session string `json:"session"`
			}
			err := rows.Scan(&r.Tick, &r.Kind, &r.Total, &r.Session)
			return r, err
		})

	default:
		return fmt.Errorf("unknown query %q (want snapshots|ticks|edits|incidents)", q)
	}
}

func emit(out io.Writer, rows *sql.Rows, scan func() (any, error)) error {
	defer rows.Close()
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	for rows.Next() {
		v, err := scan()
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return rows.Err()
}
