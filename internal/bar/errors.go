package bar

import "errors"

// ErrNoModules indicates the scheduler was constructed with an empty
// module sequence and would have nothing to render.
var ErrNoModules = errors.New("no modules configured")

// ErrEventStream indicates the renderer's event pipe terminated; the loop
// cannot continue without it.
var ErrEventStream = errors.New("renderer event stream closed")
