package listing

import "errors"

// ErrViewNotFound indicates the view was never mounted, was unmounted, or expired.
var ErrViewNotFound = errors.New("view not found")
