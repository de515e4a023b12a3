package session

import "errors"

// Sentinel errors returned by Driver.Run. Callers test them with errors.Is.
var (
	// ErrPrecondition means the executable is missing, not a regular file,
	// or not executable. It is never worth retrying.
	ErrPrecondition = errors.New("executable precondition failed")

	// ErrSpawn means the child process could not be started.
	ErrSpawn = errors.New("failed to start target")

	// ErrStream means writing a script line to the child failed.
	ErrStream = errors.New("stream to target failed")

	// ErrTimeout means the session bound or the exit wait expired and the
	// child was terminated.
	ErrTimeout = errors.New("session timed out")
)
