package common

type Headers map[string]string

// Body models errors as JSON in the API
type Body struct {
	Success bool   `json:"success" example:"false"`
	Code    string `json:"code,omitempty" example:"TASK_NOT_FOUND"`
	Message string `json:"message" binding:"required" example:"Something went wrong :("`
}

// Machine-readable error codes carried in error Bodies.
const (
	CodeVersionRequired         = "VERSION_REQUIRED"
	CodeTaskNotFound            = "TASK_NOT_FOUND"
	CodeVersionConflict         = "VERSION_CONFLICT"
	CodeConflictNotFound        = "CONFLICT_NOT_FOUND"
	CodeConflictAlreadyResolved = "CONFLICT_ALREADY_RESOLVED"
	CodeInvalidBody             = "INVALID_BODY"
	CodeInternalError           = "INTERNAL_ERROR"
)

type ApiError struct {
	StatusCode int
	Body       Body
}

func (a *ApiError) Error() string {
	return a.Body.Message
}
