// Package device caches the capabilities a physical SDR reports, so that the
// logical receive and transmit front-ends sharing it never have to query the
// hardware again after start-up.
package device

import (
	"github.com/lanikai/audionet/internal/logging"
)

var log = logging.DefaultLogger.WithTag("device")

type Direction int

const (
	Rx Direction = iota
	Tx
)

func (d Direction) String() string {
	if d == Tx {
		return "Tx"
	}
	return "Rx"
}

// Range is a numeric range with an optional step (0 means continuous).
type Range struct {
	Min, Max, Step float64
}

type ArgType int

const (
	ArgBool ArgType = iota
	ArgInt
	ArgFloat
	ArgString
)

// ArgInfo describes a device, stream or tuning argument the driver accepts.
type ArgInfo struct {
	Key         string
	Value       string // default value
	Name        string
	Description string
	Units       string
	Type        ArgType
	Range       Range
	Options     []string
	OptionNames []string
}

// Device is the query surface of a physical device. Implementations wrap a
// driver handle; every method may perform device I/O.
type Device interface {
	SettingInfo() []ArgInfo
	NumChannels(dir Direction) int

	StreamArgsInfo(dir Direction, ch int) []ArgInfo
	ListGains(dir Direction, ch int) []string
	GainRange(dir Direction, ch int) Range
	GainElementRange(dir Direction, ch int, name string) Range
	HasGainMode(dir Direction, ch int) bool
	HasDCOffsetMode(dir Direction, ch int) bool
	HasDCOffset(dir Direction, ch int) bool
	HasIQBalance(dir Direction, ch int) bool
	HasFrequencyCorrection(dir Direction, ch int) bool
	ListAntennas(dir Direction, ch int) []string
	ListFrequencies(dir Direction, ch int) []string
	FrequencyRange(dir Direction, ch int, name string) []Range
	FrequencyArgsInfo(dir Direction, ch int) []ArgInfo
	SampleRateRange(dir Direction, ch int) []Range
	BandwidthRange(dir Direction, ch int) []Range
}
