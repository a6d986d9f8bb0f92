package archiver

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/marcopiovanello/yt-fetch/server/internal"
	"github.com/segmentio/ksuid"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS archive (
	id         TEXT PRIMARY KEY,
	media_id   TEXT NOT NULL,
	title      TEXT NOT NULL,
	uploader   TEXT,
	source     TEXT,
	filetype   TEXT,
	path       TEXT,
	size       INTEGER,
	status     TEXT NOT NULL,
	created_at INTEGER NOT NULL
)`

// Entity is an archived job.
type Entity struct {
	Id        string    `json:"id"`
	MediaId   string    `json:"mediaId"`
	Title     string    `json:"title"`
	Uploader  string    `json:"uploader"`
	Source    string    `json:"source"`
	Filetype  string    `json:"filetype"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository struct {
	db *sql.DB
}

func OpenRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create archive table: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

func (r *Repository) Archive(ctx context.Context, info internal.MediaInfo) (*Entity, error) {
	e := &Entity{
		Id:        ksuid.New().String(),
		MediaId:   info.Id,
		Title:     info.Title,
		Uploader:  info.Uploader,
		Source:    info.URL,
		Filetype:  string(info.Filetype),
		Path:      info.DestinationPath,
		Size:      info.ProgressBytes,
		Status:    string(info.Status),
		CreatedAt: time.Now(),
	}

	if fi, err := os.Stat(e.Path); err == nil {
		e.Size = fi.Size()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO archive (id, media_id, title, uploader, source, filetype, path, size, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Id, e.MediaId, e.Title, e.Uploader, e.Source, e.Filetype, e.Path, e.Size, e.Status, e.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, err
	}

	return e, nil
}

// List returns the most recent entries first. ksuid ids sort by creation time.
func (r *Repository) List(ctx context.Context, limit int) ([]Entity, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, media_id, title, uploader, source, filetype, path, size, status, created_at
		 FROM archive ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entities := []Entity{}
	for rows.Next() {
		var (
			e         Entity
			createdAt int64
		)
		err := rows.Scan(&e.Id, &e.MediaId, &e.Title, &e.Uploader, &e.Source,
			&e.Filetype, &e.Path, &e.Size, &e.Status, &createdAt)
		if err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		entities = append(entities, e)
	}

	return entities, rows.Err()
}
