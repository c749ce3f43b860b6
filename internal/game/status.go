package game

import "fmt"

// Status is the outcome vocabulary shared by storage and the wire protocol.
// It borrows the HTTP status codes, but carries no HTTP semantics.
type Status int

const (
	StatusOK Status = iota + 1
	StatusCreated
	StatusBadRequest
	StatusUnauthorized
	StatusForbidden
	StatusNotFound
	StatusInternalError
)

var statusCodes = map[Status]int{
	StatusOK:            200,
	StatusCreated:       201,
	StatusBadRequest:    400,
	StatusUnauthorized:  401,
	StatusForbidden:     403,
	StatusNotFound:      404,
	StatusInternalError: 500,
}

// StatusFromCode maps a wire integer back to a Status.
func StatusFromCode(code int) (Status, error) {
	for s, c := range statusCodes {
		if c == code {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unsupported status code %d", code)
}

// Code returns the wire integer for s.
func (s Status) Code() int {
	return statusCodes[s]
}

// IsSuccess reports whether s is in the 2xx range.
func (s Status) IsSuccess() bool {
	c := s.Code()
	return c >= 200 && c < 300
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "200 OK"
	case StatusCreated:
		return "201 Created"
	case StatusBadRequest:
		return "400 Bad Request"
	case StatusUnauthorized:
		return "401 Unauthorized"
	case StatusForbidden:
		return "403 Forbidden"
	case StatusNotFound:
		return "404 Not Found"
	case StatusInternalError:
		return "500 Internal Error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}
