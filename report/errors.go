package report

import "errors"

// ErrUnknownFormat is returned by NewFormatter for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")
