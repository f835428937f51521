package device

import (
	"context"
	"iter"
	"sync"
)

// Candidate is one entry of the device directory.
type Candidate struct {
	Name   string // entry name, e.g. 1111-AAAA
	Path   string // /dev/disk/by-uuid/1111-AAAA
	Device string // resolved block device, e.g. /dev/sdb1
}

// Identity is what a probe could read from a device's superblock and
// partition table. UUID is empty when the device exposes no single UUID.
type Identity struct {
	UUID     string `json:"uuid,omitempty"`
	Type     string `json:"type,omitempty"`   // filesystem type (TYPE)
	PTType   string `json:"pttype,omitempty"` // partition table type, set for whole disks
	PartUUID string `json:"partuuid,omitempty"`
}

func (i Identity) HasUUID() bool { return i.UUID != "" }

// Enumerator yields device candidates lazily, in directory order.
type Enumerator interface {
	Candidates() iter.Seq2[Candidate, error]
}

// Prober reads the identity of a block device without mounting it.
type Prober interface {
	Probe(ctx context.Context, path string) (Identity, error)
}

// Mounter mounts source at target. The returned handle owns the mount.
type Mounter interface {
	Mount(source, target, fsType string) (*Handle, error)
}

// Handle is a live mount. Release unmounts it; only the first call does work.
type Handle struct {
	Source string
	Target string
	FSType string

	once    sync.Once
	unmount func() error
	err     error
}

func NewHandle(source, target, fsType string, unmount func() error) *Handle {
	return &Handle{Source: source, Target: target, FSType: fsType, unmount: unmount}
}

// Release unmounts the handle. Safe to call from several defers; every call
// returns the result of the single unmount.
func (h *Handle) Release() error {
	h.once.Do(func() {
		if h.unmount != nil {
			h.err = h.unmount()
		}
	})
	return h.err
}
