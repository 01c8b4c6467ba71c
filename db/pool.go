package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS projects (
    id SERIAL PRIMARY KEY,
    title VARCHAR(250) NOT NULL,
    subtitle VARCHAR(250) NOT NULL,
    img_url VARCHAR(1000) NOT NULL,
    github_url VARCHAR(1000) NOT NULL
);`

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

// OpenPostgres connects to url and ensures the projects table exists.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	p, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if _, err := p.Exec(ctx, postgresSchema); err != nil {
		p.Close()
		return nil, fmt.Errorf("db schema: %w", err)
	}
	return &Postgres{Pool: p}, nil
}

func (s *Postgres) List(ctx context.Context) ([]models.Project, error) {
	rows, err := s.Pool.Query(ctx, `
        SELECT id, title, subtitle, img_url, github_url
          FROM projects
      ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Subtitle, &p.ImgURL, &p.GitHubURL); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (s *Postgres) Get(ctx context.Context, id int) (models.Project, error) {
	var p models.Project
	err := s.Pool.QueryRow(ctx,
		"SELECT id, title, subtitle, img_url, github_url FROM projects WHERE id=$1", id).
		Scan(&p.ID, &p.Title, &p.Subtitle, &p.ImgURL, &p.GitHubURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Project{}, ErrNotFound
	}
	return p, err
}

func (s *Postgres) Create(ctx context.Context, f models.ProjectFields) (models.Project, error) {
	p := models.Project{Title: f.Title, Subtitle: f.Subtitle, ImgURL: f.ImgURL, GitHubURL: f.GitHubURL}
	err := pgx.BeginFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx,
			"INSERT INTO projects(title, subtitle, img_url, github_url) VALUES($1,$2,$3,$4) RETURNING id",
			f.Title, f.Subtitle, f.ImgURL, f.GitHubURL).Scan(&p.ID)
	})
	if err != nil {
		return models.Project{}, err
	}
	return p, nil
}

func (s *Postgres) Update(ctx context.Context, id int, f models.ProjectFields) (models.Project, error) {
	err := pgx.BeginFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"UPDATE projects SET title=$1, subtitle=$2, img_url=$3, github_url=$4 WHERE id=$5",
			f.Title, f.Subtitle, f.ImgURL, f.GitHubURL, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return models.Project{}, err
	}
	return models.Project{ID: id, Title: f.Title, Subtitle: f.Subtitle, ImgURL: f.ImgURL, GitHubURL: f.GitHubURL}, nil
}

func (s *Postgres) Delete(ctx context.Context, id int) error {
	return pgx.BeginFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "DELETE FROM projects WHERE id=$1", id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Postgres) Close() error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	return nil
}

var _ Store = (*Postgres)(nil)
