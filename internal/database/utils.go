package database

import (
	"fmt"
	"os"
	"path/filepath"
)

// createDirIfNotExists creates a directory if it doesn't exist
func createDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// prepareDBFile makes sure the directory holding the database file exists
func prepareDBFile(path string) error {
	dir := filepath.Dir(path)
	if err := createDirIfNotExists(dir); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}
