package bench

import (
	"os"
	"runtime"
	"strings"
)

// Platform returns the host label used in result rows and default file names.
func Platform() string {
	return platformFor(runtime.GOOS, "/proc/version")
}

func platformFor(goos, procVersion string) string {
	switch goos {
	case "darwin":
		return "macOS"
	case "windows":
		return "Windows"
	case "linux":
		if isWSL(procVersion) {
			return "WSL"
		}

		return "Linux"
	default:
		return "Unknown"
	}
}

func isWSL(procVersion string) bool {
	data, err := os.ReadFile(procVersion) //nolint:gosec // fixed procfs path or test fixture
	if err != nil {
		return false
	}

	version := strings.ToLower(string(data))

	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}
