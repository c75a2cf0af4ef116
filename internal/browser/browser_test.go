package browser

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAvailableDoesNotPanic(t *testing.T) {
	// Result depends on the host; only the probe itself is under test.
	_ = IsAvailable()
}

func TestOpenPlatformSpecificUnsupported(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" || runtime.GOOS == "linux" {
		t.Skip("supported platform")
	}
	err := openPlatformSpecific("https://cloud.example.com")
	assert.Error(t, err)
}
