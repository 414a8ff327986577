package exception

import "errors"

var (
	ErrConfigMissing = errors.New("config: required setting not set")
	ErrConfigInvalid = errors.New("config: invalid setting")
)
