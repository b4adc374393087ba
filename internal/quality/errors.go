package quality

import "errors"

// Contract violations. Dirty data is never reported through these; it ends
// up as findings in the TableProfile.
var (
	ErrNilSnapshot     = errors.New("nil snapshot")
	ErrRowWidth        = errors.New("row width does not match column count")
	ErrDuplicateColumn = errors.New("duplicate column name")
)
