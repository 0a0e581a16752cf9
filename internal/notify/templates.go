package notify

import (
	"bytes"
	"fmt"
	"github.com/pkg/errors"
	htmltemplate "html/template"
	texttemplate "text/template"
)

const dateLayout = "January 2, 2006"

type content struct {
	subject string
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

var contents = map[Kind]content{
	KindTripCreated: {
		subject: "Confirm your trip to %s on %s",
		html: htmltemplate.Must(htmltemplate.New("trip_created").Parse(`<div style="font-family: sans-serif; font-size: 16px; line-height: 1.6">
  <p>You requested a trip to <b>{{.Destination}}</b> from <b>{{.Start}}</b> to <b>{{.End}}</b>.</p>
  <p>To confirm your trip, click the link below:</p>
  <p><a href="{{.Link}}">Confirm trip</a></p>
  <p>If you do not know what this email is about, just ignore it.</p>
</div>`)),
		text: texttemplate.Must(texttemplate.New("trip_created").Parse(
			"You requested a trip to {{.Destination}} from {{.Start}} to {{.End}}.\n\n" +
				"Confirm your trip: {{.Link}}\n\n" +
				"If you do not know what this email is about, just ignore it.\n")),
	},
	KindTripInvite: {
		subject: "Confirm your attendance on the trip to %s on %s",
		html: htmltemplate.Must(htmltemplate.New("trip_invite").Parse(`<div style="font-family: sans-serif; font-size: 16px; line-height: 1.6">
  <p>You were invited to a trip to <b>{{.Destination}}</b> from <b>{{.Start}}</b> to <b>{{.End}}</b>.</p>
  <p>To confirm your attendance, click the link below:</p>
  <p><a href="{{.Link}}">Confirm attendance</a></p>
  <p>If you do not know what this email is about, just ignore it.</p>
</div>`)),
		text: texttemplate.Must(texttemplate.New("trip_invite").Parse(
			"You were invited to a trip to {{.Destination}} from {{.Start}} to {{.End}}.\n\n" +
				"Confirm your attendance: {{.Link}}\n\n" +
				"If you do not know what this email is about, just ignore it.\n")),
	},
}

// Render builds the email for trip addressed to to.
func Render(to Recipient, trip TripContext) (*Message, error) {
	c, ok := contents[trip.Kind]
	if !ok {
		return nil, errors.Errorf("unknown email kind %q", trip.Kind)
	}

	data := struct {
		Destination string
		Start       string
		End         string
		Link        string
	}{
		Destination: trip.Destination,
		Start:       trip.StartsAt.Format(dateLayout),
		End:         trip.EndsAt.Format(dateLayout),
		Link:        trip.Link,
	}

	var html, text bytes.Buffer
	if err := c.html.Execute(&html, data); err != nil {
		return nil, errors.Wrap(err, "render html")
	}
	if err := c.text.Execute(&text, data); err != nil {
		return nil, errors.Wrap(err, "render text")
	}

	return &Message{
		To:      to,
		Subject: fmt.Sprintf(c.subject, data.Destination, data.Start),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
