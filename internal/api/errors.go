package api

// The client sorts every failure into one of four buckets: missing or
// rejected credentials (AuthError), input rejected before any request
// is made (ValidationError), a non-2xx response (ServerError) and a
// transport failure (NetworkError). Flows branch with errors.As.

// AuthError means no usable credential; the caller should send the
// user back to login.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Authentication required. Please log in."
}

// ValidationError is a local pre-flight rejection. No request was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ServerError is a non-2xx response. Message carries the body's
// "error" field verbatim when the server sent one, else the flow's
// generic fallback.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// NetworkError is a transport failure; the user-facing text is always
// the same generic connect message.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "Failed to connect to server"
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
