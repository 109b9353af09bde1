// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package storage keeps uploaded restaurant and review images.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path"
	"strings"

	"codeberg.org/oliverandrich/localeats/internal/config"
	"github.com/google/uuid"
)

// Storage defines the interface for file storage operations
type Storage interface {
	// Save stores a file under key
	Save(ctx context.Context, key string, file io.Reader, contentType string) error

	// Delete removes the file stored under key
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for accessing the file
	URL(key string) string
}

// Upload folders.
const (
	FolderRestaurants = "restaurants"
	FolderReviews     = "reviews"
)

// New creates the storage backend selected by cfg.Driver.
func New(ctx context.Context, cfg *config.StorageConfig) (Storage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		slog.Info("initializing local storage", "dir", cfg.Dir)
		return NewLocalStorage(cfg.Dir, cfg.URLPrefix)
	case "s3":
		slog.Info("initializing S3 storage",
			"bucket", cfg.S3.Bucket,
			"region", cfg.S3.Region,
			"endpoint", cfg.S3.Endpoint,
		)
		return NewS3Storage(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// SaveUpload validates an uploaded image and stores it under folder with a
// random name. It returns the storage key.
func SaveUpload(ctx context.Context, st Storage, folder string, header *multipart.FileHeader) (string, error) {
	contentType, err := ValidateImage(header)
	if err != nil {
		return "", err
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	key := path.Join(folder, uuid.New().String()+imageExtensions[contentType])
	if err := st.Save(ctx, key, file, contentType); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return key, nil
}
