package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
)

// ArchiveRepository stores raw imported statement files so a run can be
// audited after the fact. Archiving is best-effort: callers log failures
// and continue.
type ArchiveRepository interface {
	Store(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
}

// StatementObjectPath builds a unique object key for an imported statement
func StatementObjectPath(businessID int32, fileName string) string {
	ext := path.Ext(fileName)
	if ext == "" {
		ext = ".csv"
	}
	return path.Join("imports", fmt.Sprintf("%d", businessID), uuid.New().String()+ext)
}
