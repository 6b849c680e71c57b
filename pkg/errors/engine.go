package errors

// EngineError is a specialized error type for engine-facade operations
// (Set/Get/Remove/Open/Close). It embeds baseError the same way StorageError
// and IndexError do, adding the context that matters at the facade level:
// which key and operation were involved, and whether the error originated
// on a remote peer (the client's RemoteMessage carrier, spec.md §7).
type EngineError struct {
	*baseError
	key       string
	operation string
	remote    bool
}

// NewEngineError creates a new engine-specific error.
func NewEngineError(err error, code ErrorCode, msg string) *EngineError {
	return &EngineError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the EngineError type.
func (ee *EngineError) WithMessage(msg string) *EngineError {
	ee.baseError.WithMessage(msg)
	return ee
}

// WithCode sets the error code while preserving the EngineError type.
func (ee *EngineError) WithCode(code ErrorCode) *EngineError {
	ee.baseError.WithCode(code)
	return ee
}

// WithDetail adds contextual information while maintaining the EngineError type.
func (ee *EngineError) WithDetail(key string, value any) *EngineError {
	ee.baseError.WithDetail(key, value)
	return ee
}

// WithKey records which key was being processed when the error occurred.
func (ee *EngineError) WithKey(key string) *EngineError {
	ee.key = key
	return ee
}

// WithOperation records which facade operation was being performed.
func (ee *EngineError) WithOperation(operation string) *EngineError {
	ee.operation = operation
	return ee
}

// AsRemote marks this error as having originated on a remote peer rather
// than locally, mirroring the client's RemoteMessage error kind.
func (ee *EngineError) AsRemote() *EngineError {
	ee.remote = true
	return ee
}

// Key returns the key that was being processed when the error occurred.
func (ee *EngineError) Key() string { return ee.key }

// Operation returns the name of the facade operation that failed.
func (ee *EngineError) Operation() string { return ee.operation }

// Remote reports whether this error was relayed from a remote peer.
func (ee *EngineError) Remote() bool { return ee.remote }

// NewKeyNotFoundEngineError creates the canonical "key not found" error
// returned by Remove (and by the server for a Remove wire request).
func NewKeyNotFoundEngineError(key string) *EngineError {
	return NewEngineError(nil, ErrorCodeKeyNotFound, "Key not found").
		WithKey(key).
		WithOperation("Remove")
}

// NewUndefinedCommandError creates the fatal error returned when an index
// entry resolves to a non-Set record on disk — an index/log mismatch.
func NewUndefinedCommandError(key string) *EngineError {
	return NewEngineError(nil, ErrorCodeUndefinedCommand, "Undefined command").
		WithKey(key).
		WithOperation("Get")
}

// NewRemoteMessageError wraps an error string received from a remote kvs
// server so the client can surface it verbatim, per spec.md §7.
func NewRemoteMessageError(msg string) *EngineError {
	return NewEngineError(nil, ErrorCodeRemoteMessage, msg).AsRemote()
}

// NewEngineNameParseError reports an unrecognized or conflicting storage
// engine name, raised by the server CLI's engine-file round-trip check and
// by the backend switch for any name other than "kvs"/"bbolt".
func NewEngineNameParseError(msg string) *EngineError {
	return NewEngineError(nil, ErrorCodeEngineNameParse, msg).WithOperation("Open")
}

// NewExternalBackendError wraps a failure surfaced by an external storage
// backend (bbolt) so it carries the same error taxonomy as the native
// engine's own failures.
func NewExternalBackendError(err error, operation string) *EngineError {
	return NewEngineError(err, ErrorCodeExternalBackend, err.Error()).WithOperation(operation)
}

// NewUtf8Error reports a key or value that failed the basic UTF-8 check
// the native engine's writer performs on Set (spec.md §9(c): no further
// validation is imposed on keys/values beyond this).
func NewUtf8Error(key, operation string) *EngineError {
	return NewEngineError(nil, ErrorCodeUtf8, "key or value is not valid UTF-8").
		WithKey(key).
		WithOperation(operation)
}
