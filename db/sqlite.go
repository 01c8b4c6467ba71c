package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"portfolio/models"
)

// SQLite is the local file-backed Store used when no DATABASE_URL is set.
type SQLite struct {
	DB *gorm.DB
}

// OpenSQLite opens (or creates) the database file at path and migrates the
// projects table.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&models.Project{}); err != nil {
		return nil, fmt.Errorf("migrate projects: %w", err)
	}
	return &SQLite{DB: db}, nil
}

func (s *SQLite) List(ctx context.Context) ([]models.Project, error) {
	var list []models.Project
	if err := s.DB.WithContext(ctx).Order("id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *SQLite) Get(ctx context.Context, id int) (models.Project, error) {
	var p models.Project
	err := s.DB.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Project{}, ErrNotFound
	}
	return p, err
}

func (s *SQLite) Create(ctx context.Context, f models.ProjectFields) (models.Project, error) {
	p := models.Project{Title: f.Title, Subtitle: f.Subtitle, ImgURL: f.ImgURL, GitHubURL: f.GitHubURL}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&p).Error
	})
	if err != nil {
		return models.Project{}, err
	}
	return p, nil
}

func (s *SQLite) Update(ctx context.Context, id int, f models.ProjectFields) (models.Project, error) {
	p := models.Project{ID: id, Title: f.Title, Subtitle: f.Subtitle, ImgURL: f.ImgURL, GitHubURL: f.GitHubURL}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Project{}).Where("id = ?", id).Updates(map[string]any{
			"title":      f.Title,
			"subtitle":   f.Subtitle,
			"img_url":    f.ImgURL,
			"github_url": f.GitHubURL,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return models.Project{}, err
	}
	return p, nil
}

func (s *SQLite) Delete(ctx context.Context, id int) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Project{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *SQLite) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ Store = (*SQLite)(nil)
