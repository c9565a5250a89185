package device

// GainSetting is one named gain element and its range.
type GainSetting struct {
	Name  string
	Range Range
}

// FrequencySetting is one named tunable element and its ranges.
type FrequencySetting struct {
	Name   string
	Ranges []Range
}

// ChannelSetting holds everything one channel reported at construction.
type ChannelSetting struct {
	StreamArgs []ArgInfo

	HasDCAutoCorrection    bool
	HasDCOffsetValue       bool
	HasIQBalanceValue      bool
	HasFrequencyCorrection bool
	HasAGC                 bool
	Antennas               []string
	GainRange              Range
	Gains                  []GainSetting
	Frequencies            []FrequencySetting
	FrequencyArgs          []ArgInfo
	SampleRates            []Range
	Bandwidths             []Range
}

// Params is a read-only snapshot of a device's capabilities. It is filled
// once by NewParams; accessors never touch the device.
type Params struct {
	deviceArgs []ArgInfo
	rx         []ChannelSetting
	tx         []ChannelSetting
}

// NewParams queries dev for every direction and channel.
func NewParams(dev Device) *Params {
	p := &Params{deviceArgs: dev.SettingInfo()}
	p.rx = fillChannels(dev, Rx)
	p.tx = fillChannels(dev, Tx)
	log.Debug("Device snapshot: %d Rx, %d Tx channels", len(p.rx), len(p.tx))
	return p
}

func fillChannels(dev Device, dir Direction) []ChannelSetting {
	n := dev.NumChannels(dir)
	settings := make([]ChannelSetting, n)
	for ch := 0; ch < n; ch++ {
		fillChannel(&settings[ch], dev, dir, ch)
	}
	return settings
}

func fillChannel(s *ChannelSetting, dev Device, dir Direction, ch int) {
	s.StreamArgs = dev.StreamArgsInfo(dir, ch)

	s.HasAGC = dev.HasGainMode(dir, ch)
	s.GainRange = dev.GainRange(dir, ch)
	for _, name := range dev.ListGains(dir, ch) {
		s.Gains = append(s.Gains, GainSetting{name, dev.GainElementRange(dir, ch, name)})
	}

	s.HasDCAutoCorrection = dev.HasDCOffsetMode(dir, ch)
	s.HasDCOffsetValue = dev.HasDCOffset(dir, ch)
	s.HasIQBalanceValue = dev.HasIQBalance(dir, ch)
	s.HasFrequencyCorrection = dev.HasFrequencyCorrection(dir, ch)

	s.Antennas = dev.ListAntennas(dir, ch)

	for _, name := range dev.ListFrequencies(dir, ch) {
		s.Frequencies = append(s.Frequencies, FrequencySetting{name, dev.FrequencyRange(dir, ch, name)})
	}
	s.FrequencyArgs = dev.FrequencyArgsInfo(dir, ch)

	s.SampleRates = dev.SampleRateRange(dir, ch)
	s.Bandwidths = dev.BandwidthRange(dir, ch)
}

// DeviceArgs describes the device-wide settings.
func (p *Params) DeviceArgs() []ArgInfo {
	return p.deviceArgs
}

// Number of receive channels reported by the device.
func (p *Params) NumRxChannels() int {
	return len(p.rx)
}

// Number of transmit channels reported by the device.
func (p *Params) NumTxChannels() int {
	return len(p.tx)
}

// RxChannel returns the settings of a receive channel, or nil if the index is
// out of range.
func (p *Params) RxChannel(i int) *ChannelSetting {
	return channel(p.rx, i)
}

// TxChannel returns the settings of a transmit channel, or nil if the index is
// out of range.
func (p *Params) TxChannel(i int) *ChannelSetting {
	return channel(p.tx, i)
}

func channel(settings []ChannelSetting, i int) *ChannelSetting {
	if i < 0 || i >= len(settings) {
		return nil
	}
	return &settings[i]
}
