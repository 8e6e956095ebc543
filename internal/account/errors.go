package account

import "errors"

// Failure taxonomy surfaced by the service. Handlers map these to HTTP
// status codes; everything else is a 500.
var (
	ErrEmailTaken         = errors.New("user already exists")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrForbidden          = errors.New("unauthorized access")
	ErrAssetUpload        = errors.New("asset upload failed")
)
