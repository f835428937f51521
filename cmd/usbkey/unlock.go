package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"usbkey/internal/disk"
	"usbkey/internal/unlock"
)

func cmdUnlock(args []string) int {
	fs := flag.NewFlagSet("unlock", flag.ExitOnError)
	cf := addCommonFlags(fs)
	mount := fs.String("mount", "", "mount point (overrides MOUNT)")
	fsType := fs.String("fstype", "", "filesystem type of the key device (overrides FSTYPE)")
	_ = fs.Parse(args)

	log := newLogger(*cf.logLevel)
	cfg, err := cf.load()
	if err != nil {
		log.WithError(err).Error("cannot load configuration")
		return exitFatal
	}
	if *mount != "" {
		cfg.MountPoint = *mount
	}
	if *fsType != "" {
		cfg.FSType = *fsType
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &unlock.Pipeline{
		Enumerator: disk.ByUUIDEnumerator{Dir: cfg.DeviceDir},
		Prober:     disk.NewBlkidProber(cfg.ProbeTimeout),
		Mounter:    disk.SysMounter{ReadOnly: cfg.ReadOnly, Logger: log},
		Logger:     log,
	}
	res, err := p.Run(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("unlock failed")
		return exitFatal
	}
	if res.Matched {
		fmt.Println(res.Digest)
	}
	return exitOK
}
