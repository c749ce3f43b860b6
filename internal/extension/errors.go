package extension

// UserError is a command failure caused by the player's input. The registry
// reports it as a line of output, not as an error.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}
