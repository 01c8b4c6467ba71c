package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"portfolio/models"
)

// ErrNotFound is returned when an id does not resolve to a stored project.
var ErrNotFound = errors.New("project not found")

// Store is the project table. Every mutation runs in its own transaction.
type Store interface {
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, id int) (models.Project, error)
	Create(ctx context.Context, f models.ProjectFields) (models.Project, error)
	Update(ctx context.Context, id int, f models.ProjectFields) (models.Project, error)
	Delete(ctx context.Context, id int) error
	Close() error
}

// Open picks a backend from the DSN scheme: postgres:// and postgresql://
// use a pgx pool, sqlite://path or a bare file path use SQLite.
// The projects table is created if missing.
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return OpenPostgres(ctx, dsn)
	case dsn == "":
		return nil, errors.New("empty database url")
	default:
		path, err := sqlitePath(dsn)
		if err != nil {
			return nil, err
		}
		return OpenSQLite(path)
	}
}

// sqlitePath accepts sqlite://relative.db, sqlite:///abs/path.db and plain
// paths. Any other scheme is rejected.
func sqlitePath(dsn string) (string, error) {
	if rest, ok := strings.CutPrefix(dsn, "sqlite://"); ok {
		// sqlite:///projects.db is a relative file in the SQLAlchemy style,
		// sqlite:////abs/projects.db is absolute.
		if strings.HasPrefix(rest, "//") {
			rest = rest[1:]
		} else {
			rest = strings.TrimPrefix(rest, "/")
		}
		if rest == "" {
			return "", fmt.Errorf("sqlite url %q has no path", dsn)
		}
		return rest, nil
	}
	if i := strings.Index(dsn, "://"); i > 0 {
		return "", fmt.Errorf("unsupported database scheme %q", dsn[:i])
	}
	return dsn, nil
}
