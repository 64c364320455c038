//go:build !bytesize_debug

package bytesize

const debugChecks = false
