package service

type ErrorCode string

const (
	ErrorCodeInvalidStartDate ErrorCode = "INVALID_START_DATE"
	ErrorCodeInvalidEndDate   ErrorCode = "INVALID_END_DATE"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodePersistence      ErrorCode = "PERSISTENCE_ERROR"
	ErrorCodeInvalidBody      ErrorCode = "INVALID_BODY"
	ErrorCodeInvalidID        ErrorCode = "INVALID_ID"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func (e *Error) Error() string {
	return e.Message
}
