package handlers

const (
	AdminSecretHeader = "X-Admin-Secret"

	ErrInvalidJSON         = "Invalid JSON body"
	ErrInvalidBabyID       = "Invalid baby id"
	ErrInvalidEntityID     = "Invalid entity id"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrBabyNotFound        = "Baby not found"
	ErrEntityNotFound      = "Entity not found"
	ErrInternalServerError = "Internal server error"

	defaultUpcomingLimit = 5
	maxUpcomingLimit     = 50
)
