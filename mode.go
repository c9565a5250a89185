package audionet

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Mode selects how samples leave the sink.
type Mode int

const (
	// RawBlock batches samples into fixed-size datagrams sent over plain UDP
	// to the current destination.
	RawBlock Mode = iota

	// RealTime hands every sample to the RTP transport, which packetizes and
	// fans out to all of its destinations.
	RealTime
)

func (m Mode) String() string {
	switch m {
	case RawBlock:
		return "udp"
	case RealTime:
		return "rtp"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

func (m Mode) valid() bool {
	return m == RawBlock || m == RealTime
}

// ParseMode accepts the names printed by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "udp", "raw", "rawblock":
		return RawBlock, nil
	case "rtp", "realtime":
		return RealTime, nil
	}
	return 0, errors.Errorf("unknown transport mode '%s'", s)
}
