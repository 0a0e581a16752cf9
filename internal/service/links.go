package service

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"net/url"
)

// Links builds the absolute URLs embedded in emails and the redirect issued
// after a confirmation.
type Links struct {
	api         *url.URL
	participant *url.URL
	web         *url.URL
}

func NewLinks(apiBaseURL, participantBaseURL, webBaseURL string) (*Links, error) {
	api, err := parseBaseURL(apiBaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "api base url")
	}
	participant, err := parseBaseURL(participantBaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "participant base url")
	}
	web, err := parseBaseURL(webBaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "web base url")
	}

	return &Links{api: api, participant: participant, web: web}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("%q is not an absolute url", raw)
	}
	return u, nil
}

// TripConfirm is the owner's link that confirms the whole trip.
func (l *Links) TripConfirm(tripID uuid.UUID) string {
	return l.api.JoinPath("trips", tripID.String(), "confirm").String()
}

// ParticipantConfirm is an invitee's link that confirms their attendance.
func (l *Links) ParticipantConfirm(participantID uuid.UUID) string {
	return l.participant.JoinPath("participants", participantID.String(), "confirm").String()
}

// TripPage is where a browser lands after confirming a trip.
func (l *Links) TripPage(tripID uuid.UUID) string {
	return l.web.JoinPath("trips", tripID.String()).String()
}
