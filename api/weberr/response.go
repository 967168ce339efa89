package weberr

import "errors"

type responder interface {
	Response() (body interface{}, status int)
}

// Response extracts the HTTP rendering from an error, walking the wrap
// chain. ok is false when no error in the chain carries one.
func Response(err error) (body interface{}, status int, ok bool) {
	var rs responder
	if !errors.As(err, &rs) {
		return nil, 0, false
	}

	body, status = rs.Response()
	return body, status, true
}

type responseError struct {
	error
	body   interface{}
	status int
}

func (e *responseError) Response() (interface{}, int) { return e.body, e.status }

func (e *responseError) Unwrap() error { return e.error }
