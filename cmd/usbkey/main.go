// main.go: find the key USB stick, mount it, print the digest of its key file
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

func main() {
	args := os.Args[1:]
	cmd := "unlock"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "unlock":
		os.Exit(cmdUnlock(args))
	case "probe":
		os.Exit(cmdProbe(args))
	case "digest":
		os.Exit(cmdDigest(args))
	case "help":
		usage()
	default:
		usage()
		os.Exit(exitUsage)
	}
}

func usage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, `Usage:
  %s [unlock] [--config /etc/usb-key.conf] [--mount /mnt] [--fstype ext4] [--dev-dir /dev/disk/by-uuid]
  %s probe    [--config /etc/usb-key.conf] [--dev-dir /dev/disk/by-uuid] [--json]   # list devices and their UUIDs
  %s digest   --file secret.txt                                                    # digest of a local key file

unlock prints the SHA-256 of KEY on the device whose UUID is USB, or nothing
when no device matches. The config path can also be set with $USBKEY_CONFIG.
`, prog, prog, prog)
}
