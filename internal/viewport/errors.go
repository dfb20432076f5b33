package viewport

import "errors"

// ErrIndeterminateDirection is the panic value for a scroll comparison that
// is neither less, greater nor equal.
var ErrIndeterminateDirection = errors.New("viewport: indeterminate scroll direction")
