package approval

import "errors"

var (
	// ErrNilStore indicates the driver was constructed without a store.
	ErrNilStore = errors.New("approval: store is nil")
	// ErrInvalidBatchSize indicates the requested batch size is not positive.
	ErrInvalidBatchSize = errors.New("approval: batch size must be positive")
	// ErrInvalidMaxAttempts indicates the attempt bound is below one.
	ErrInvalidMaxAttempts = errors.New("approval: max attempts must be at least 1")
	// ErrInvalidRetryDelay indicates the backoff base delay is not positive.
	ErrInvalidRetryDelay = errors.New("approval: retry delay must be positive")
)
