package rtp

// common.go contains generic logic that is common between RTP and RTCP (i.e.
// the data protocol and the control protocol).

import (
	"github.com/lanikai/audionet/internal/logging"
)

var log = logging.DefaultLogger.WithTag("rtp")

const (
	// RFC 3550 defines RTP version 2.
	rtpVersion = 2
)
