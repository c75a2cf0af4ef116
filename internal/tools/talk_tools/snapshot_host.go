package talk_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/FredrikJonassonItsb/talkbridge/internal/appointment"
)

// snapshotHost adapts an appointment supplied inline with a tool call to the
// appointment.Host interface. Mutations are applied to the in-memory copy and
// returned to the caller in the tool result; notification banners have no
// surface here and are swallowed.
type snapshotHost struct {
	mu       sync.Mutex
	snapshot *appointment.Snapshot
}

func newSnapshotHost(s *appointment.Snapshot) *snapshotHost {
	return &snapshotHost{snapshot: s}
}

// parseSnapshot decodes the "appointment" tool argument, which may be a JSON
// object or a string containing one.
func parseSnapshot(arg interface{}) (*appointment.Snapshot, error) {
	var raw []byte
	switch v := arg.(type) {
	case nil:
		return nil, fmt.Errorf("appointment is required")
	case string:
		raw = []byte(v)
	default:
		var err error
		raw, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("invalid appointment: %w", err)
		}
	}

	var s appointment.Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("invalid appointment: %w", err)
	}
	return &s, nil
}

func (h *snapshotHost) Snapshot(context.Context) (*appointment.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	snap := *h.snapshot
	return &snap, nil
}

func (h *snapshotHost) SetBody(_ context.Context, body string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshot.Body = body
	return nil
}

func (h *snapshotHost) SetLocation(_ context.Context, location string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshot.Location = location
	return nil
}

func (h *snapshotHost) ShowProgress(context.Context, string, string) error { return nil }

func (h *snapshotHost) ShowNotification(context.Context, string, string) error { return nil }

func (h *snapshotHost) ShowError(context.Context, string, string) error { return nil }

func (h *snapshotHost) ClearNotification(context.Context, string) error { return nil }

// Result returns the snapshot after mutations.
func (h *snapshotHost) Result() appointment.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return *h.snapshot
}
