package geomag

import "errors"

var (
	// ErrResourceUnavailable marks a coefficient file that cannot be opened or
	// cannot be loaded into a catalog.
	ErrResourceUnavailable = errors.New("geomag: coefficient resource unavailable")

	// ErrCorruptRecord marks a record with the wrong length or contents.
	ErrCorruptRecord = errors.New("geomag: corrupt record")

	// ErrTooManyModels marks a file holding more than MaxModels models.
	ErrTooManyModels = errors.New("geomag: too many models")
)
