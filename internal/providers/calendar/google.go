package calendar

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleCalendar creates events on a single service calendar using an
// offline refresh token obtained out of band.
type GoogleCalendar struct {
	svc        *gcal.Service
	calendarID string
	timezone   string
}

func NewGoogleCalendarFromEnv(ctx context.Context) (*GoogleCalendar, error) {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	refreshToken := os.Getenv("GOOGLE_REFRESH_TOKEN")
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, errors.New("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REFRESH_TOKEN must be set")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{gcal.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
	ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	svc, err := gcal.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, err
	}

	calendarID := os.Getenv("GOOGLE_CALENDAR_ID")
	if calendarID == "" {
		calendarID = "primary"
	}
	timezone := os.Getenv("GOOGLE_CALENDAR_TZ")
	if timezone == "" {
		timezone = "Asia/Kolkata"
	}

	return &GoogleCalendar{svc: svc, calendarID: calendarID, timezone: timezone}, nil
}

func (g *GoogleCalendar) CreateEvent(ctx context.Context, summary string, start, end time.Time, attendees []string) (string, error) {
	ev := &gcal.Event{
		Summary: summary,
		Start:   &gcal.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: g.timezone},
		End:     &gcal.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: g.timezone},
	}
	for _, a := range attendees {
		ev.Attendees = append(ev.Attendees, &gcal.EventAttendee{Email: a})
	}

	created, err := g.svc.Events.Insert(g.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}
