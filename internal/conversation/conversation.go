// Package conversation drives the per-user trip dialog: origin, destination,
// departure time, stop categories, confirmation. Invalid input re-prompts
// without advancing; "cancel" ends the trip from any step.
package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"roadtrip/internal/gazetteer"
	"roadtrip/internal/model"
)

const (
	cancelToken  = "cancel"
	confirmToken = "s"

	codeDirect      = "1"
	codeFuel        = "2"
	codeFood        = "3"
	codeAttractions = "4"
)

const menuPrompt = "pick your stops: 1 - straight there, 2 - gas stations, 3 - restaurants, 4 - attractions. send 's' when done"

// Reply is the outcome of handling one user message. Trip is non-nil only
// when the conversation just finished and a request is ready for intake.
type Reply struct {
	Messages []string
	Trip     *model.TripRequest
}

// Machine applies one user message to the user's session. It is
// deterministic given the session state and the clock.
type Machine struct {
	Sessions *Sessions
	Cities   *gazetteer.Gazetteer
	Now      func() time.Time
	NewID    func() string
}

func NewMachine(sessions *Sessions, cities *gazetteer.Gazetteer) *Machine {
	return &Machine{
		Sessions: sessions,
		Cities:   cities,
		Now:      time.Now,
		NewID:    func() string { return uuid.NewString()[:8] },
	}
}

// Handle advances the conversation with one message.
func (m *Machine) Handle(userID int64, userName, text string) Reply {
	sess, created := m.Sessions.Get(userID, userName)
	text = strings.TrimSpace(text)

	if created {
		return say("hi %s, let's plan a road trip. where does your trip begin?", userName)
	}
	if strings.EqualFold(text, cancelToken) {
		sess.State = StateCancelled
		return say("trip cancelled. message me again to start a new one")
	}

	switch sess.State {
	case StateStart:
		return m.handleOrigin(sess, text)
	case StateOriginSelected:
		return m.handleDestination(sess, text)
	case StateDestinationSelected:
		return m.handleDeparture(sess, text)
	case StateTimeSelected, StateCategoriesSelected:
		return m.handleMenu(sess, text)
	default:
		return say("something went wrong, message me again to start over")
	}
}

func (m *Machine) handleOrigin(sess *Session, text string) Reply {
	if !m.Cities.Contains(text) {
		return say("i don't know the city %q, try again", text)
	}
	sess.Origin = gazetteer.Normalize(text)
	sess.State = StateOriginSelected
	return say("great, and where are you headed?")
}

func (m *Machine) handleDestination(sess *Session, text string) Reply {
	if !m.Cities.Contains(text) {
		return say("i don't know the city %q, try again", text)
	}
	dest := gazetteer.Normalize(text)
	if dest == sess.Origin {
		return say("destination matches the origin, pick a different city")
	}
	sess.Destination = dest
	sess.State = StateDestinationSelected
	return say("when are you leaving? send it as DD/MM HH:MM")
}

func (m *Machine) handleDeparture(sess *Session, text string) Reply {
	dep, err := m.parseDeparture(text)
	if err != nil {
		return say("i couldn't read that date, send it as DD/MM HH:MM")
	}
	sess.Departure = dep
	sess.State = StateTimeSelected
	return say("leaving %s on a %s. %s", dep.Format("02/01 15:04"), dep.Weekday(), menuPrompt)
}

// parseDeparture reads "DD/MM HH:MM". The current year is spliced in before
// parsing so day validation runs against the real calendar: 31/02 always
// fails, 29/02 fails outside leap years.
func (m *Machine) parseDeparture(text string) (time.Time, error) {
	now := m.Now()
	full := strings.Replace(strings.TrimSpace(text), " ", fmt.Sprintf("/%d ", now.Year()), 1)
	return time.ParseInLocation("02/01/2006 15:04", full, now.Location())
}

func (m *Machine) handleMenu(sess *Session, text string) Reply {
	confirmed := false
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool { return r == ' ' || r == ',' }) {
		switch tok {
		case codeDirect:
			sess.Categories = model.CategorySet{}
		case codeFuel:
			sess.Categories.Fuel = true
		case codeFood:
			sess.Categories.Food = true
		case codeAttractions:
			sess.Categories.Attractions = true
		case confirmToken:
			confirmed = true
		default:
			return say("i didn't get that. %s", menuPrompt)
		}
	}
	if text == "" {
		return say("i didn't get that. %s", menuPrompt)
	}
	if !confirmed {
		sess.State = StateCategoriesSelected
		return say("noted. add more stops or send 's' to confirm")
	}
	return m.finish(sess)
}

func (m *Machine) finish(sess *Session) Reply {
	now := m.Now()
	sess.LatestRouteID = fmt.Sprintf("%d-%s", sess.UserID, m.NewID())
	sess.State = StateFinished
	trip := &model.TripRequest{
		UserID:      sess.UserID,
		Email:       sess.Email,
		CreatedAt:   now.Format(time.RFC3339),
		RouteID:     sess.LatestRouteID,
		Origin:      sess.Origin,
		Destination: sess.Destination,
		Departure:   sess.Departure.Format(time.RFC3339),
		DayOfWeek:   sess.Departure.Weekday().String(),
		Categories:  sess.Categories,
	}
	msg := "all set, planning your trip now"
	if trip.Categories.Empty() {
		msg = "all set, you'll get the route summary shortly"
	}
	return Reply{Messages: []string{msg}, Trip: trip}
}

func say(format string, args ...any) Reply {
	return Reply{Messages: []string{fmt.Sprintf(format, args...)}}
}
