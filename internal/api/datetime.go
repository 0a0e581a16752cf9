package api

import (
	"bytes"
	"encoding/json"
	"github.com/pkg/errors"
	"time"
)

const dateLayout = "2006-01-02"

// DateTime accepts either an RFC 3339 timestamp or a bare date. A bare date
// means midnight UTC of that day.
type DateTime struct {
	time.Time
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "datetime must be a string")
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		d.Time = t
		return nil
	}

	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return errors.Errorf("invalid datetime %q", raw)
	}
	d.Time = t
	return nil
}
