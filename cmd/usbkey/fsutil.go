package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"usbkey/internal/config"
)

func fatal(fmtStr string, a ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+fmtStr+"\n", a...)
	os.Exit(exitFatal)
}

func must(err error) {
	if err != nil {
		fatal("%v", err)
	}
}

// commonFlags are shared by unlock and probe.
type commonFlags struct {
	config   *string
	devDir   *string
	logLevel *string
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config:   fs.String("config", "", "config file (default $"+config.EnvPath+" or "+config.PathDefault+")"),
		devDir:   fs.String("dev-dir", "", "directory of device symlinks (overrides DEVDIR)"),
		logLevel: fs.String("log-level", "info", "debug | info | warn | error"),
	}
}

func (c commonFlags) load() (config.Config, error) {
	cfg, err := config.Load(config.Path(*c.config))
	if err != nil {
		return config.Config{}, err
	}
	if *c.devDir != "" {
		cfg.DeviceDir = *c.devDir
	}
	return cfg, nil
}

// newLogger logs to stderr; stdout carries only the digest.
func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
