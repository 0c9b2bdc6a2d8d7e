package compositor

import (
	"os"
	"strconv"
	"strings"
)

// processName returns the kernel's short command name for pid, or "" if
// it cannot be read.
func processName(pid int32) string {
	if pid <= 0 {
		return ""
	}
	raw, err := os.ReadFile("/proc/" + strconv.Itoa(int(pid)) + "/comm")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
