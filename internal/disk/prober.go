package disk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"usbkey/internal/device"
	"usbkey/internal/utils"
)

// blkid(8) exit codes for low-level probing.
const (
	blkidNotFound   = 2 // no signature, or nothing identifiable
	blkidAmbivalent = 8 // more than one signature
)

type runFunc func(ctx context.Context, name string, args ...string) (out []byte, code int, err error)

// BlkidProber reads superblock and partition-table metadata with
// `blkid -p -o export`. The low-level mode reads the device directly and
// leaves the blkid cache alone.
type BlkidProber struct {
	Timeout time.Duration

	run        runFunc
	checkBlock func(path string) error
}

func NewBlkidProber(timeout time.Duration) BlkidProber {
	return BlkidProber{Timeout: timeout, run: execRun, checkBlock: isBlockDevice}
}

// Probe returns the identity of path. A device without a single UUID (no
// filesystem, a partition table, several signatures) returns an empty
// Identity and no error. Whole disks with several partitions are not looked
// into: only single-filesystem devices can be matched.
func (p BlkidProber) Probe(ctx context.Context, path string) (device.Identity, error) {
	if p.checkBlock != nil {
		if err := p.checkBlock(path); err != nil {
			return device.Identity{}, err
		}
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	run := p.run
	if run == nil {
		run = execRun
	}

	out, code, err := run(ctx, "blkid", "-p", "-o", "export", path)
	if err != nil {
		if ctx.Err() != nil {
			return device.Identity{}, fmt.Errorf("probe %s: %w", path, ctx.Err())
		}
		if code == blkidNotFound || code == blkidAmbivalent {
			return device.Identity{}, nil
		}
		return device.Identity{}, fmt.Errorf("probe %s: %w", path, err)
	}
	return parseExport(out), nil
}

func parseExport(out []byte) device.Identity {
	kv := utils.ParseKVEq(string(out))
	return device.Identity{
		UUID:     kv["UUID"],
		Type:     kv["TYPE"],
		PTType:   kv["PTTYPE"],
		PartUUID: kv["PART_ENTRY_UUID"],
	}
}

func isBlockDevice(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("probe %s: %w", path, err)
	}
	if fi.Mode()&os.ModeDevice == 0 || fi.Mode()&os.ModeCharDevice != 0 {
		return fmt.Errorf("probe %s: not a block device", path)
	}
	return nil
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		code := -1
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			code = ee.ExitCode()
		}
		return out, code, fmt.Errorf("%s %v: %w: %s", name, args, err, strings.TrimSpace(stderr.String()))
	}
	return out, 0, nil
}
