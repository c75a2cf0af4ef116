package browser

import (
	"github.com/FredrikJonassonItsb/talkbridge/internal/auth"
)

// redirectWindow reports the window as closed once the redirect callback has
// been handled. The system browser gives no close signal, so completion of
// the redirect stands in for it.
type redirectWindow struct {
	completed func() bool
}

func (w redirectWindow) Closed() bool {
	return w.completed()
}

// WindowOpener opens the sign-in page in the system browser. Completed is
// polled to decide when the sign-in attempt is over; wire it to the redirect
// server's Completed method.
type WindowOpener struct {
	Completed func() bool
}

// Open launches the system browser at the given URL.
func (o WindowOpener) Open(url string) (auth.Window, error) {
	if err := OpenURL(url); err != nil {
		return nil, err
	}
	return redirectWindow{completed: o.Completed}, nil
}
