//go:build bytesize_debug

package bytesize

// debugChecks verifies after every token that the bytes written match
// Token.EncodedLen.
const debugChecks = true
