package memrepo

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hobbs-bbs/hobbs/internal/domain"
	hobbserrors "github.com/hobbs-bbs/hobbs/internal/errors"
)

// Files is an in-memory folder/file repository enforcing the maximum
// folder nesting depth.
type Files struct {
	mu      sync.Mutex
	folders map[uuid.UUID]*domain.Folder
	files   map[uuid.UUID]*domain.File
}

func NewFiles() *Files {
	return &Files{
		folders: make(map[uuid.UUID]*domain.Folder),
		files:   make(map[uuid.UUID]*domain.File),
	}
}

func (r *Files) GetFolder(_ context.Context, id uuid.UUID) (domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return domain.Folder{}, hobbserrors.NotFound("folder")
	}
	return *f, nil
}

func (r *Files) ListFolders(_ context.Context, parentID uuid.UUID) ([]domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Folder, 0)
	for _, f := range r.folders {
		if f.ParentID == parentID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *Files) ListFiles(_ context.Context, folderID uuid.UUID) ([]domain.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.File, 0)
	for _, f := range r.files {
		if f.FolderID == folderID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *Files) CreateFolder(_ context.Context, f domain.Folder) (domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f.Depth > domain.MaxFolderDepth {
		return domain.Folder{}, hobbserrors.Validation("folder nesting exceeds max depth")
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	r.folders[f.ID] = &f
	return f, nil
}

func (r *Files) CreateFile(_ context.Context, f domain.File) (domain.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A zero FolderID places the file in the root, which has no Folder
	// record of its own.
	if f.FolderID != uuid.Nil {
		if _, ok := r.folders[f.FolderID]; !ok {
			return domain.File{}, hobbserrors.NotFound("folder")
		}
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	r.files[f.ID] = &f
	return f, nil
}

func (r *Files) DeleteFile(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return hobbserrors.NotFound("file")
	}
	delete(r.files, id)
	return nil
}

func (r *Files) RecordDownload(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return hobbserrors.NotFound("file")
	}
	f.Downloads++
	return nil
}
