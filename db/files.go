package db

import (
	"context"

	"tendercrm/models"
)

var fileColumns = map[string]bool{
	"name":        true,
	"description": true,
	"url":         true,
	"file_type":   true,
	"is_default":  true,
}

func (s *Storage) GetFiles(ctx context.Context) ([]models.DownloadableFile, error) {
	files := []models.DownloadableFile{}
	query := `SELECT * FROM downloadable_files ORDER BY is_default DESC, upload_date DESC, id DESC`
	if err := s.db.SelectContext(ctx, &files, query); err != nil {
		return nil, translate(err)
	}
	return files, nil
}

func (s *Storage) CountFiles(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM downloadable_files`); err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (s *Storage) GetFile(ctx context.Context, id int) (*models.DownloadableFile, error) {
	f := &models.DownloadableFile{}
	if err := s.db.GetContext(ctx, f, `SELECT * FROM downloadable_files WHERE id = $1`, id); err != nil {
		return nil, translate(err)
	}
	return f, nil
}

func (s *Storage) CreateFile(ctx context.Context, f *models.DownloadableFile) error {
	query := `
        INSERT INTO downloadable_files (name, description, url, file_type, is_default, owner_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING *`
	err := s.db.GetContext(ctx, f, query, f.Name, f.Description, f.URL, f.FileType, f.IsDefault, f.OwnerID)
	return translate(err)
}

func (s *Storage) UpdateFile(ctx context.Context, id int, c Changes) (*models.DownloadableFile, error) {
	if len(c) == 0 {
		return s.GetFile(ctx, id)
	}
	query, args, err := buildUpdate("downloadable_files", fileColumns, id, c, false)
	if err != nil {
		return nil, err
	}
	f := &models.DownloadableFile{}
	if err := s.db.GetContext(ctx, f, query, args...); err != nil {
		return nil, translate(err)
	}
	return f, nil
}

func (s *Storage) DeleteFile(ctx context.Context, id int) error {
	return execDelete(ctx, s.db, "downloadable_files", id)
}
