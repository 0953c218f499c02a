//go:build !linux && !aix && !zos && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd
// +build !linux,!aix,!zos,!darwin,!dragonfly,!freebsd,!netbsd,!openbsd

package logger

func isTerminal(fd uintptr) bool {
	return false
}
