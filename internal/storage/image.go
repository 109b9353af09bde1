// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxImageSize bounds uploaded images.
const MaxImageSize = 5 << 20

var (
	ErrFileTooLarge = errors.New("file too large")
	ErrFileType     = errors.New("unsupported file type")
)

// imageExtensions maps accepted content types to the stored extension.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// ValidateImage checks size, extension and sniffed content type of an
// upload and returns the detected content type.
func ValidateImage(header *multipart.FileHeader) (string, error) {
	if header.Size > MaxImageSize {
		return "", fmt.Errorf("%w: maximum size is %d MB", ErrFileTooLarge, MaxImageSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: extension %q", ErrFileType, ext)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// http.DetectContentType reads at most 512 bytes
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	detected := http.DetectContentType(buffer[:n])
	if _, ok := imageExtensions[detected]; !ok {
		return "", fmt.Errorf("%w: detected %s", ErrFileType, detected)
	}

	return detected, nil
}
