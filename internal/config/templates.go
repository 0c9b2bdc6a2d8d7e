package config

import (
	"fmt"
	"os"
)

// WriteTemplate writes a commented starter config to path.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template), 0o600)
}

const Template = `# socket = "/run/user/1000/icm.sock"

[log]
level = "info"
json = false

[session]
dial_timeout = "5s"
read_timeout = "0s"
write_timeout = "10s"
max_payload_bytes = 67108864
connect_attempts = 5

[server]
metrics_addr = "127.0.0.1:9464"
frame_rate = 2000.0
frame_burst = 256
launch = true

[[server.monitors]]
name = "ICM-0"
width = 1920
height = 1080
physical_width = 527
physical_height = 296
refresh_rate = 60
scale = 1.0
primary = true
`
