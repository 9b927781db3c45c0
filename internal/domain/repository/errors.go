package repository

import "errors"

// Metadata fetch errors (from the video platform API). These abort the
// request: neither analysis branch can run without metadata.
var (
	ErrVideoNotFound       = errors.New("video not found")
	ErrMetadataUnavailable = errors.New("video metadata unavailable")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrPermissionDenied    = errors.New("upstream permission denied")
)

// Classifier errors. These are captured into a BranchResult and yield an
// unsafe verdict rather than failing the request.
var (
	ErrImageFetchFailed      = errors.New("failed to fetch thumbnail image")
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrClassifierUnparseable = errors.New("classifier response unparseable")
	ErrClassifierRejected    = errors.New("classifier rejected input")
)
