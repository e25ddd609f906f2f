package sensor

import "errors"

var (
	// ErrMalformedPayload is returned when a message body is not a JSON object.
	ErrMalformedPayload = errors.New("sensor: malformed payload")

	// ErrNilDependency is returned by NewSubscriber when a dependency is missing.
	ErrNilDependency = errors.New("sensor: missing dependency")
)
