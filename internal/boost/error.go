package boost

import "errors"

var ErrInvalidBoostOption = errors.New("invalid boost option")
