// Package platform maps the running OS to the framework's platform names.
package platform

import "runtime"

// Platform names used for asset bundles and remote config paths.
const (
	Android = "Android"
	IOS     = "iOS"
	Windows = "Windows"
	OSX     = "OSX"
)

// Name returns the platform name of the running binary, or "" when the OS
// has no bundle target.
func Name() string { return NameFor(runtime.GOOS) }

// NameFor maps a GOOS value to a platform name.
func NameFor(goos string) string {
	switch goos {
	case "android":
		return Android
	case "ios":
		return IOS
	case "windows":
		return Windows
	case "darwin":
		return OSX
	}
	return ""
}
