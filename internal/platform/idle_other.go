//go:build !linux && !windows

package platform

func newIdleChecker() IdleChecker {
	return unsupportedIdleChecker{}
}
