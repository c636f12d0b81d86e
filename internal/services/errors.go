package services

import "errors"

var (
	ErrInvalidCredentials = errors.New("Invalid Credentials")
	ErrUserNotFound       = errors.New("User Not Found")
	ErrEmailTaken         = errors.New("An account with this email already exists")
	ErrPasswordTooLong    = errors.New("Password must be at most 72 bytes")

	ErrNoCodeRequested  = errors.New("Validation code is undefined. Please request a validation code.")
	ErrCodeExpired      = errors.New("Validation code is expired. Please request a new validation code.")
	ErrTooManyAttempts  = errors.New("Too many attempts to validate this code. Please request a new validation code after the timeout.")
	ErrIncorrectCode    = errors.New("Incorrect validation code. Please try again.")
	ErrConcurrentUpdate = errors.New("The validation code changed while processing the request. Please try again.")
	ErrResendThrottled  = errors.New("Too many validation emails requested. Please try again later.")

	ErrAlreadySetUp  = errors.New("The application has already been set up")
	ErrNotSetUp      = errors.New("The application has not been set up yet")
	ErrInvalidPolicy = errors.New("Invalid verification policy")

	ErrProjectNotFound   = errors.New("Project Not Found")
	ErrNotDatasetOwner   = errors.New("Only dataset owners can create projects")
	ErrCreatorNotMember  = errors.New("The creator of a project must be a user of the project")
	ErrNotProjectManager = errors.New("Only project managers can modify this project")
)
