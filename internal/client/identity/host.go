package identity

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

// hostComponents gathers whatever host characteristics are available.
// Every input is optional; absent values just don't contribute.
func hostComponents() []string {
	components := []string{
		runtime.GOOS,
		runtime.GOARCH,
		strconv.Itoa(runtime.NumCPU()),
	}

	if host, err := os.Hostname(); err == nil && host != "" {
		components = append(components, host)
	}
	if lang := os.Getenv("LANG"); lang != "" {
		components = append(components, lang)
	}
	if tz := time.Now().Location().String(); tz != "" {
		components = append(components, tz)
	}

	return components
}

func hostInfo() DeviceInfo {
	info := DeviceInfo{
		Platform: runtime.GOOS,
		Arch:     runtime.GOARCH,
		CPUCount: runtime.NumCPU(),
		Language: os.Getenv("LANG"),
		Timezone: time.Now().Location().String(),
	}
	if host, err := os.Hostname(); err == nil {
		info.Hostname = host
	}
	return info
}
