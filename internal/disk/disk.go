package disk

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"

	gdisk "github.com/shirou/gopsutil/disk"

	"usbkey/internal/device"
)

// ByUUIDEnumerator lists the stable symlinks of a directory such as
// /dev/disk/by-uuid.
type ByUUIDEnumerator struct {
	Dir string
}

// Candidates resolves each entry when it is reached. An entry that does not
// resolve is yielded together with its error; consumers decide whether to go on.
func (e ByUUIDEnumerator) Candidates() iter.Seq2[device.Candidate, error] {
	return func(yield func(device.Candidate, error) bool) {
		entries, err := os.ReadDir(e.Dir)
		if err != nil {
			yield(device.Candidate{}, fmt.Errorf("list %s: %w", e.Dir, err))
			return
		}
		for _, ent := range entries {
			c := device.Candidate{Name: ent.Name(), Path: filepath.Join(e.Dir, ent.Name())}
			dev, err := filepath.EvalSymlinks(c.Path)
			if err != nil {
				if !yield(c, fmt.Errorf("resolve %s: %w", c.Path, err)) {
					return
				}
				continue
			}
			c.Device = dev
			if !yield(c, nil) {
				return
			}
		}
	}
}

var partitions = func() ([]gdisk.PartitionStat, error) {
	return gdisk.Partitions(true)
}

// MountSource looks target up in the mount table and returns the device
// mounted there.
func MountSource(target string) (source string, mounted bool, err error) {
	parts, err := partitions()
	if err != nil {
		return "", false, err
	}
	want := filepath.Clean(target)
	for _, p := range parts {
		if p.Mountpoint != "" && filepath.Clean(p.Mountpoint) == want {
			return p.Device, true, nil
		}
	}
	return "", false, nil
}

// MountsOf returns the mount points where dev (or a path resolving to it) is
// mounted.
func MountsOf(dev string) ([]string, error) {
	parts, err := partitions()
	if err != nil {
		return nil, err
	}
	var res []string
	for _, p := range parts {
		if p.Device == dev {
			res = append(res, p.Mountpoint)
			continue
		}
		if r, err := filepath.EvalSymlinks(p.Device); err == nil && r == dev {
			res = append(res, p.Mountpoint)
		}
	}
	return res, nil
}
