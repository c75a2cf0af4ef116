package provision

import (
	"context"
	"fmt"
	"sync"

	"github.com/FredrikJonassonItsb/talkbridge/internal/appointment"
	"github.com/FredrikJonassonItsb/talkbridge/internal/attendee"
	"github.com/FredrikJonassonItsb/talkbridge/internal/auth"
	"github.com/FredrikJonassonItsb/talkbridge/internal/config"
	"github.com/FredrikJonassonItsb/talkbridge/internal/ics"
	"github.com/FredrikJonassonItsb/talkbridge/internal/logging"
	"github.com/FredrikJonassonItsb/talkbridge/internal/nextcloud"
)

// Step identifies one stage of the provisioning saga.
type Step string

const (
	StepValidate            Step = "validate"
	StepCreateRoom          Step = "create_room"
	StepCreateCalendarEvent Step = "create_calendar_event"
	StepMutateAppointment   Step = "mutate_appointment"
)

// Notification banner ids on the host.
const (
	bannerProgress = "talk-progress"
	bannerResult   = "talk-result"
)

// Result reports exactly how far the saga progressed. Completed side effects
// (room, calendar entry) stay in place on failure; there is no rollback.
type Result struct {
	SucceededSteps []Step
	Room           *nextcloud.RoomDescriptor
	CalendarUID    string
	Err            error
}

// Succeeded reports whether the given step completed.
func (r *Result) Succeeded(step Step) bool {
	for _, s := range r.SucceededSteps {
		if s == step {
			return true
		}
	}
	return false
}

// RoomCreator creates Talk rooms. Satisfied by *nextcloud.Client.
type RoomCreator interface {
	CreateRoom(ctx context.Context, roomName string, roomType int) (*nextcloud.RoomDescriptor, error)
}

// CalendarWriter writes calendar events. Satisfied by *nextcloud.Client.
type CalendarWriter interface {
	PutEvent(ctx context.Context, username, calendar, uid, ics string) error
}

// ProfileSource supplies the cached profile whose id anchors the CalDAV
// path. Satisfied by *auth.Manager.
type ProfileSource interface {
	Profile() (auth.Profile, bool, error)
}

// Pipeline runs the four-step provisioning saga: validate the appointment,
// create the Talk room, write the calendar event, mutate the appointment.
// One run at a time per pipeline; completed steps are never compensated.
type Pipeline struct {
	cfg       *config.Config
	rooms     RoomCreator
	calendars CalendarWriter
	profiles  ProfileSource
	host      appointment.Host
	logger    logging.Logger

	// UID generation is swappable for deterministic tests.
	newUID func() string

	mu      sync.Mutex
	running bool
}

// NewPipeline wires a pipeline for one appointment host.
func NewPipeline(cfg *config.Config, rooms RoomCreator, calendars CalendarWriter,
	profiles ProfileSource, host appointment.Host, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Pipeline{
		cfg:       cfg,
		rooms:     rooms,
		calendars: calendars,
		profiles:  profiles,
		host:      host,
		logger:    logger,
		newUID:    ics.NewUID,
	}
}

// Run executes the saga using the session's attendee security settings. The
// returned Result always records which steps succeeded; on failure Err names
// the failing step's error and later steps are not attempted.
func (p *Pipeline) Run(ctx context.Context, session *Session) *Result {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return &Result{Err: ErrProvisioningInProgress}
	}
	p.running = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	result := &Result{}
	_ = p.host.ShowProgress(ctx, bannerProgress, "Adding Talk meeting...")
	defer func() { _ = p.host.ClearNotification(ctx, bannerProgress) }()

	// Validate
	snapshot, err := p.host.Snapshot(ctx)
	if err != nil {
		return p.fail(ctx, result, StepValidate, err)
	}
	intent, err := appointment.Validate(snapshot)
	if err != nil {
		return p.fail(ctx, result, StepValidate, err)
	}
	p.step(result, StepValidate)

	// CreateRoom
	room, err := p.rooms.CreateRoom(ctx, intent.Subject, p.cfg.RoomType)
	if err != nil {
		return p.fail(ctx, result, StepCreateRoom, fmt.Errorf("%w: %w", ErrRoomCreationFailed, err))
	}
	result.Room = room
	p.step(result, StepCreateRoom)

	// CreateCalendarEvent: runs after room creation so the event can embed
	// the join URL.
	uid, err := p.writeCalendarEvent(ctx, intent, room, session)
	if err != nil {
		return p.fail(ctx, result, StepCreateCalendarEvent, fmt.Errorf("%w: %w", ErrCalendarWriteFailed, err))
	}
	result.CalendarUID = uid
	p.step(result, StepCreateCalendarEvent)

	// MutateAppointment
	if err := p.mutateAppointment(ctx, snapshot, room); err != nil {
		return p.fail(ctx, result, StepMutateAppointment, fmt.Errorf("%w: %w", ErrAppointmentUpdateFailed, err))
	}
	p.step(result, StepMutateAppointment)

	_ = p.host.ShowNotification(ctx, bannerResult, "Talk meeting added to the appointment.")
	p.logger.Info("meeting provisioned",
		logging.KeyRoom, room.Token,
		"uid", result.CalendarUID)
	return result
}

func (p *Pipeline) writeCalendarEvent(ctx context.Context, intent *appointment.MeetingIntent,
	room *nextcloud.RoomDescriptor, session *Session) (string, error) {
	profile, ok, err := p.profiles.Profile()
	if err != nil {
		return "", err
	}
	if !ok || profile.ID == "" {
		return "", fmt.Errorf("no user profile available for the calendar path")
	}

	var settings map[string]attendee.SecuritySettings
	if session != nil {
		settings = session.Settings()
	}

	uid := p.newUID()
	doc := ics.Encode(ics.Event{
		UID:         uid,
		Summary:     intent.Subject,
		Description: "Join the meeting via Nextcloud Talk:\n" + room.URL,
		Start:       intent.Start,
		End:         intent.End,
		TalkURL:     room.URL,
		Attendees:   attendee.MergeAll(intent.Attendees, settings),
	})

	if err := p.calendars.PutEvent(ctx, profile.ID, p.cfg.Calendar, uid, doc); err != nil {
		return "", err
	}
	return uid, nil
}

func (p *Pipeline) mutateAppointment(ctx context.Context, snapshot *appointment.Snapshot,
	room *nextcloud.RoomDescriptor) error {
	newBody := appointment.ApplyMeetingBlock(snapshot.Body, room.URL, room.Name)
	if err := p.host.SetBody(ctx, newBody); err != nil {
		return err
	}
	return p.host.SetLocation(ctx, appointment.LocationLabel)
}

func (p *Pipeline) step(result *Result, step Step) {
	result.SucceededSteps = append(result.SucceededSteps, step)
	p.logger.Debug("provisioning step completed", logging.KeyStep, string(step))
}

func (p *Pipeline) fail(ctx context.Context, result *Result, step Step, err error) *Result {
	result.Err = err
	_ = p.host.ShowError(ctx, bannerResult, err.Error())
	p.logger.Error("provisioning failed",
		logging.KeyStep, string(step),
		logging.KeyError, err.Error())
	return result
}
