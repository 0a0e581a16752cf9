package service

import "time"

// ValidateTripDates checks that a trip does not start in the past and does
// not end before it starts. Equal instants are accepted.
func ValidateTripDates(startsAt, endsAt, now time.Time) *Error {
	if startsAt.Before(now) {
		return NewError(ErrorCodeInvalidStartDate, "invalid trip start date")
	}
	if endsAt.Before(startsAt) {
		return NewError(ErrorCodeInvalidEndDate, "invalid trip end date")
	}
	return nil
}
