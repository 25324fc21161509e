package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(link string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(link)) {
	case LinkSerial, "":
		return serialTemplate, nil
	case LinkTCP:
		return tcpTemplate, nil
	default:
		return "", fmt.Errorf("unknown link kind: %s", link)
	}
}

func WriteTemplate(path, link string, overwrite bool) error {
	template, err := Template(link)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const serialTemplate = `link = "serial"
device = "/dev/ttyUSB0"
baud = 115200

sync_timeout = "500ms"
reply_timeout = "2s"
renew_interval = "4s"
max_frame_bytes = 2048

admin_addr = "127.0.0.1:9410"
log_file = ""
`

const tcpTemplate = `link = "tcp"
address = "esp-link.local:2323"

sync_timeout = "500ms"
reply_timeout = "2s"
renew_interval = "4s"
max_frame_bytes = 2048

admin_addr = "127.0.0.1:9410"
log_file = ""
`
