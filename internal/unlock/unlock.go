// Package unlock finds the key device, mounts it and hashes the key file.
package unlock

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"usbkey/internal/binding"
	"usbkey/internal/config"
	"usbkey/internal/device"
	"usbkey/internal/keys"
)

// Error kinds. Everything but ErrMount ends the run; ErrMount is logged and
// the scan moves on to the next candidate.
var (
	ErrConfig      = config.ErrConfig
	ErrEnumeration = errors.New("enumeration error")
	ErrProbe       = errors.New("probe error")
	ErrMount       = errors.New("mount error")
	ErrExtraction  = errors.New("extraction error")
)

// Result of a run. Matched is false when the scan ran out of candidates;
// that outcome comes with a nil error.
type Result struct {
	Matched bool
	Device  device.Candidate
	Digest  string
}

type Pipeline struct {
	Enumerator device.Enumerator
	Prober     device.Prober
	Mounter    device.Mounter
	Logger     *logrus.Logger
}

// Run performs one scan. Candidates are handled one at a time; the first one
// that matches and mounts decides the outcome. The mount is always released
// before Run returns.
func (p *Pipeline) Run(ctx context.Context, cfg config.Config) (Result, error) {
	log := p.Logger
	if log == nil {
		log = logrus.New()
	}
	if cfg.Unset() {
		log.Warn("no USB identifier configured, no device will match")
	}

	for cand, err := range p.Enumerator.Candidates() {
		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrEnumeration, err)
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		entry := log.WithFields(logrus.Fields{"entry": cand.Name, "device": cand.Device})

		id, err := p.Prober.Probe(ctx, cand.Device)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %s: %w", ErrProbe, cand.Path, err)
		}
		if !id.HasUUID() && id.PTType != "" {
			entry.WithField("pttype", id.PTType).Debug("partition table without a filesystem UUID, only single-filesystem devices can match")
		}
		if !binding.Matches(id, cfg.TargetIdentifier) {
			uuid := id.UUID
			if uuid == "" {
				uuid = "(no uuid)"
			}
			entry.Infof("%s does not match the usb", uuid)
			continue
		}

		h, err := p.Mounter.Mount(cand.Device, cfg.MountPoint, cfg.FSType)
		if err != nil {
			entry.WithError(fmt.Errorf("%w: %w", ErrMount, err)).Error("failed to mount device")
			continue
		}
		return p.extract(log, h, cand, cfg)
	}

	log.WithField("usb", cfg.TargetIdentifier).Info("no matching device found")
	return Result{}, nil
}

func (p *Pipeline) extract(log *logrus.Logger, h *device.Handle, cand device.Candidate, cfg config.Config) (res Result, err error) {
	defer func() {
		if rerr := h.Release(); rerr != nil {
			log.WithError(rerr).WithField("mount", h.Target).Error("failed to release mount")
		}
	}()

	digest, err := keys.Extract(h.Target, cfg.KeyPath)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	log.WithFields(logrus.Fields{"device": cand.Device, "mount": h.Target}).Debug("key read")
	return Result{Matched: true, Device: cand, Digest: digest}, nil
}
