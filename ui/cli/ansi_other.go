//go:build !windows

package cli

func EnableANSI() {}
