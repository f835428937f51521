package disk

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"usbkey/internal/device"
)

var ErrMountPointBusy = errors.New("mount point already in use")

var (
	mountFn   = unix.Mount
	unmountFn = unix.Unmount
)

// SysMounter mounts with mount(2) and detaches on release, so an open file
// under the mount point cannot keep the release from returning.
type SysMounter struct {
	ReadOnly bool
	Logger   *logrus.Logger
}

func (m SysMounter) Mount(source, target, fsType string) (*device.Handle, error) {
	if err := os.MkdirAll(target, 0755); err != nil {
		return nil, fmt.Errorf("create mount point %s: %w", target, err)
	}
	src, mounted, err := MountSource(target)
	if err != nil {
		return nil, fmt.Errorf("read mount table: %w", err)
	}
	if mounted {
		return nil, fmt.Errorf("%w: %s (%s)", ErrMountPointBusy, target, src)
	}

	flags := uintptr(unix.MS_NOSUID | unix.MS_NODEV | unix.MS_NOEXEC)
	if m.ReadOnly {
		flags |= unix.MS_RDONLY
	}
	if err := mountFn(source, target, fsType, flags, ""); err != nil {
		return nil, fmt.Errorf("mount %s on %s (%s): %w", source, target, fsType, err)
	}
	return device.NewHandle(source, target, fsType, func() error {
		return m.unmount(target)
	}), nil
}

func (m SysMounter) unmount(target string) error {
	if err := unmountFn(target, unix.MNT_DETACH); err != nil {
		return fmt.Errorf("umount %s: %w", target, err)
	}
	if src, still, err := MountSource(target); err == nil && still {
		m.log().WithFields(logrus.Fields{"mount": target, "source": src}).
			Warn("mount point still listed after detach")
	}
	return nil
}

func (m SysMounter) log() *logrus.Logger {
	if m.Logger == nil {
		return logrus.StandardLogger()
	}
	return m.Logger
}
