package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/FredrikJonassonItsb/talkbridge/internal/logging"
)

// FileHost adapts a JSON appointment snapshot on disk to the Host interface,
// letting the provisioning pipeline run from the command line. Mutations are
// written back to the same file; notification banners become log lines.
type FileHost struct {
	path     string
	logger   logging.Logger
	snapshot *Snapshot
}

// NewFileHost returns a FileHost reading and writing path.
func NewFileHost(path string, logger logging.Logger) *FileHost {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &FileHost{path: path, logger: logger}
}

// Snapshot implements Host.
func (h *FileHost) Snapshot(context.Context) (*Snapshot, error) {
	raw, err := os.ReadFile(h.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read appointment file: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("invalid appointment file %s: %w", h.path, err)
	}
	h.snapshot = &s
	return &s, nil
}

// SetBody implements Host.
func (h *FileHost) SetBody(ctx context.Context, body string) error {
	if err := h.ensureLoaded(ctx); err != nil {
		return err
	}
	h.snapshot.Body = body
	return h.save()
}

// SetLocation implements Host.
func (h *FileHost) SetLocation(ctx context.Context, location string) error {
	if err := h.ensureLoaded(ctx); err != nil {
		return err
	}
	h.snapshot.Location = location
	return h.save()
}

// ShowProgress implements Host.
func (h *FileHost) ShowProgress(_ context.Context, id, message string) error {
	h.logger.Info(message, "banner", id, logging.KeyStatus, "progress")
	return nil
}

// ShowNotification implements Host.
func (h *FileHost) ShowNotification(_ context.Context, id, message string) error {
	h.logger.Info(message, "banner", id)
	return nil
}

// ShowError implements Host.
func (h *FileHost) ShowError(_ context.Context, id, message string) error {
	h.logger.Error(message, "banner", id)
	return nil
}

// ClearNotification implements Host.
func (h *FileHost) ClearNotification(context.Context, string) error {
	return nil
}

func (h *FileHost) ensureLoaded(ctx context.Context) error {
	if h.snapshot != nil {
		return nil
	}
	_, err := h.Snapshot(ctx)
	return err
}

func (h *FileHost) save() error {
	raw, err := json.MarshalIndent(h.snapshot, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(h.path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write appointment file: %w", err)
	}
	return nil
}
