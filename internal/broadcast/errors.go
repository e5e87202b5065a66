package broadcast

import "errors"

// ErrBusClosed is returned when publishing on a closed bus.
var ErrBusClosed = errors.New("broadcast: bus closed")
