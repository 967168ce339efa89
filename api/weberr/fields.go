package weberr

import "errors"

type fielder interface {
	Fields() map[string]interface{}
}

// Fields extracts the structured logging fields from an error, walking
// the wrap chain. ok is false when no error in the chain carries any.
func Fields(err error) (fields map[string]interface{}, ok bool) {
	var fs fielder
	if !errors.As(err, &fs) {
		return nil, false
	}
	return fs.Fields(), true
}

type fieldsError struct {
	error
	fields map[string]interface{}
}

func (e *fieldsError) Fields() map[string]interface{} { return e.fields }

func (e *fieldsError) Unwrap() error { return e.error }
