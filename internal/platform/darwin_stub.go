//go:build !darwin

package platform

// newDarwinReader is only reachable when runtime.GOOS is darwin; the
// stub keeps NewReader compiling everywhere else.
func newDarwinReader() Reader { return newLibReader() }
