package reembed

import "errors"

// ErrInvalidMaxAttempts rejects retry budgets that would never run the
// operation at all.
var ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
