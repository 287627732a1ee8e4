package models

import "errors"

// Typed error kinds. These are sentinels, wrapped with
// fmt.Errorf("...: %w", ErrX) at the call site so callers can still
// errors.Is against the kind while getting a path-specific message.
var (
	// ErrEmbedding marks a transient embedding-backend failure: the file
	// fails, the error counter increments, the pipeline keeps running.
	ErrEmbedding = errors.New("embedding failure")

	// ErrVectorIndex marks a transient vector-index failure.
	ErrVectorIndex = errors.New("vector index failure")

	// ErrFileRead marks a non-retriable file read/decode failure (e.g.
	// non-UTF-8 content). The file is skipped and counted.
	ErrFileRead = errors.New("file read failure")

	// ErrChunking marks a non-retriable chunking failure for one file.
	ErrChunking = errors.New("chunking failure")

	// ErrConfiguration marks a fatal startup configuration error.
	ErrConfiguration = errors.New("configuration error")

	// ErrAuth marks a proof-of-possession / authorization failure,
	// reported to callers as a 403 response. Never mutates state.
	ErrAuth = errors.New("authorization failure")

	// ErrRateLimited marks a retriable rate-limit response from a
	// downstream backend.
	ErrRateLimited = errors.New("rate limited")

	// ErrValidation marks a bad request shape, reported as 400.
	ErrValidation = errors.New("validation error")

	// ErrInternal marks a failure fatal to the in-flight operation only.
	ErrInternal = errors.New("internal error")
)
