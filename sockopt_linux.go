package audionet

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func socketControl(cfg *Config) func(network, address string, c syscall.RawConn) error {
	if cfg.SendBuffer <= 0 && cfg.Priority <= 0 {
		return nil
	}
	return func(network, address string, c syscall.RawConn) error {
		return c.Control(func(fd uintptr) {
			if cfg.SendBuffer > 0 {
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, cfg.SendBuffer); err != nil {
					log.Warn("Failed to set SO_SNDBUF %d: %v", cfg.SendBuffer, err)
				}
			}
			if cfg.Priority > 0 {
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_PRIORITY, cfg.Priority); err != nil {
					log.Warn("Failed to set SO_PRIORITY %d: %v", cfg.Priority, err)
				}
			}
		})
	}
}
