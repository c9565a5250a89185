//go:build !linux

package audionet

import (
	"syscall"
)

func socketControl(cfg *Config) func(network, address string, c syscall.RawConn) error {
	if cfg.SendBuffer > 0 || cfg.Priority > 0 {
		log.Warn("Socket send buffer and priority are only supported on Linux")
	}
	return nil
}
