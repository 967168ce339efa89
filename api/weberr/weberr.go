// Package weberr enriches errors with the HTTP response they should
// render as and with structured logging fields, without losing the
// wrapped cause.
package weberr

// Opt decorates an error with extra behavior.
type Opt func(error) error

// Wrap applies every option to err in order.
func Wrap(err error, opts ...Opt) error {
	for _, o := range opts {
		err = o(err)
	}
	return err
}

// WithResponse attaches the body and status the error renders as.
func WithResponse(body interface{}, status int) Opt {
	return func(err error) error {
		return &responseError{error: err, body: body, status: status}
	}
}

// WithFields attaches structured fields for the error log line.
func WithFields(fields map[string]interface{}) Opt {
	return func(err error) error {
		return &fieldsError{error: err, fields: fields}
	}
}
