package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDialogHost struct {
	events  *DialogEvents
	openErr error
}

func (f *fakeDialogHost) OpenDialog(context.Context, string) (*DialogEvents, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.events, nil
}

func dialogChannels() (chan DialogMessage, chan int, *DialogEvents) {
	messages := make(chan DialogMessage, 1)
	dismissals := make(chan int, 4)
	return messages, dismissals, &DialogEvents{Messages: messages, Dismissals: dismissals}
}

func TestDialogTransportCode(t *testing.T) {
	messages, _, events := dialogChannels()
	transport := NewDialogTransport(&fakeDialogHost{events: events}, nil)

	messages <- DialogMessage{Code: "code-1"}

	res, err := transport.Open(context.Background(), "https://cloud.example.com/authorize", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusAuthenticated, res.Status)
	assert.Equal(t, "code-1", res.Code)
}

func TestDialogTransportError(t *testing.T) {
	messages, _, events := dialogChannels()
	transport := NewDialogTransport(&fakeDialogHost{events: events}, nil)

	messages <- DialogMessage{Error: "access denied"}

	res, err := transport.Open(context.Background(), "u", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Err.Error(), "access denied")
}

func TestDialogTransportUserClosed(t *testing.T) {
	_, dismissals, events := dialogChannels()
	transport := NewDialogTransport(&fakeDialogHost{events: events}, nil)

	dismissals <- DismissalUserClosed

	res, err := transport.Open(context.Background(), "u", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, res.Status)
	assert.ErrorIs(t, res.Err, ErrLoginCancelled)
}

func TestDialogTransportIgnoresSpuriousDismissals(t *testing.T) {
	messages, dismissals, events := dialogChannels()
	transport := NewDialogTransport(&fakeDialogHost{events: events}, nil)

	// spurious dismissal codes must not end the attempt
	dismissals <- 12007
	dismissals <- 12009

	go func() {
		time.Sleep(10 * time.Millisecond)
		messages <- DialogMessage{Code: "code-2"}
	}()

	res, err := transport.Open(context.Background(), "u", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusAuthenticated, res.Status)
	assert.Equal(t, "code-2", res.Code)
}

func TestDialogTransportOpenFailure(t *testing.T) {
	transport := NewDialogTransport(&fakeDialogHost{openErr: errors.New("no dialog surface")}, nil)

	_, err := transport.Open(context.Background(), "u", nil)
	assert.ErrorIs(t, err, ErrTransportUnavailable)
}

func TestDialogTransportContextCancelled(t *testing.T) {
	_, _, events := dialogChannels()
	transport := NewDialogTransport(&fakeDialogHost{events: events}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := transport.Open(ctx, "u", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestDialogTransportClosedChannel(t *testing.T) {
	messages := make(chan DialogMessage)
	close(messages)
	events := &DialogEvents{Messages: messages, Dismissals: make(chan int)}
	transport := NewDialogTransport(&fakeDialogHost{events: events}, nil)

	res, err := transport.Open(context.Background(), "u", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, ErrLoginIncomplete)
}
