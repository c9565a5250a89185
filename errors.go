package audionet

import (
	"github.com/pkg/errors"
)

var (
	errUnsupportedFormat = errors.New("Unsupported sample format")
	errShortFrame        = errors.New("Frame data shorter than sample count")
)
