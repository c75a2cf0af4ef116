package appointment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAppointment = `{
  "subject": "Weekly Sync",
  "start": "2025-03-01T10:00:00Z",
  "end": "2025-03-01T10:30:00Z",
  "body": "Agenda",
  "requiredAttendees": [
    {"email": "alice@example.com", "name": "Alice"}
  ],
  "optionalAttendees": []
}`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "appointment.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleAppointment), 0644))
	return path
}

func TestFileHostSnapshot(t *testing.T) {
	host := NewFileHost(writeSample(t), nil)

	s, err := host.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Weekly Sync", s.Subject)
	assert.Equal(t, "Agenda", s.Body)
	require.Len(t, s.Required, 1)
	assert.Equal(t, "alice@example.com", s.Required[0].Email)
}

func TestFileHostMutations(t *testing.T) {
	path := writeSample(t)
	host := NewFileHost(path, nil)
	ctx := context.Background()

	require.NoError(t, host.SetBody(ctx, "new body"))
	require.NoError(t, host.SetLocation(ctx, LocationLabel))

	// a fresh host sees the persisted mutations
	reread := NewFileHost(path, nil)
	s, err := reread.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new body", s.Body)
	assert.Equal(t, LocationLabel, s.Location)
}

func TestFileHostErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		host := NewFileHost(filepath.Join(t.TempDir(), "nope.json"), nil)
		_, err := host.Snapshot(context.Background())
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
		host := NewFileHost(path, nil)
		_, err := host.Snapshot(context.Background())
		assert.Error(t, err)
	})
}
