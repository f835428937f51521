package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"usbkey/internal/binding"
	"usbkey/internal/config"
	"usbkey/internal/device"
	"usbkey/internal/disk"
)

// === PROBE ===
// Lists every candidate with what blkid reads from it, so USB= can be filled
// in. Unlike unlock it keeps going past bad entries.

type probeRow struct {
	Entry  string          `json:"entry"`
	Device string          `json:"device,omitempty"`
	ID     device.Identity `json:"identity"`
	Match  bool            `json:"match"`
	Mounts []string        `json:"mounts,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func collectProbeRows(ctx context.Context, enum device.Enumerator, prober device.Prober, target string) []probeRow {
	var rows []probeRow
	for c, err := range enum.Candidates() {
		row := probeRow{Entry: c.Name, Device: c.Device}
		if err != nil {
			row.Error = err.Error()
			rows = append(rows, row)
			continue
		}
		id, err := prober.Probe(ctx, c.Device)
		if err != nil {
			row.Error = err.Error()
		}
		row.ID = id
		row.Match = binding.Matches(id, target)
		if mps, err := disk.MountsOf(c.Device); err == nil {
			row.Mounts = mps
		}
		rows = append(rows, row)
	}
	return rows
}

func printProbeRows(w io.Writer, rows []probeRow) {
	for _, r := range rows {
		fmt.Fprintf(w, "entry              : %s\n", r.Entry)
		if r.Device != "" {
			fmt.Fprintf(w, "device             : %s\n", r.Device)
		}
		if r.Error != "" {
			fmt.Fprintf(w, "error              : %s\n", r.Error)
		}
		if r.ID.UUID != "" {
			fmt.Fprintf(w, "uuid               : %s\n", r.ID.UUID)
		}
		if r.ID.Type != "" {
			fmt.Fprintf(w, "type               : %s\n", r.ID.Type)
		}
		if r.ID.PTType != "" {
			fmt.Fprintf(w, "pttype             : %s  (no single UUID, cannot be a key device)\n", r.ID.PTType)
		}
		if len(r.Mounts) > 0 {
			fmt.Fprintf(w, "mounted            : %s\n", strings.Join(r.Mounts, ", "))
		}
		if r.Match {
			fmt.Fprintln(w, "match              : yes")
		}
		fmt.Fprintln(w)
	}
}

func cmdProbe(args []string) int {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	cf := addCommonFlags(fs)
	jsonOut := fs.Bool("json", false, "print rows as JSON")
	_ = fs.Parse(args)

	log := newLogger(*cf.logLevel)
	cfg, err := cf.load()
	if err != nil {
		log.WithError(err).Warn("no usable configuration, nothing will be marked as matching")
		cfg = config.Default()
		if *cf.devDir != "" {
			cfg.DeviceDir = *cf.devDir
		}
	}

	rows := collectProbeRows(context.Background(),
		disk.ByUUIDEnumerator{Dir: cfg.DeviceDir},
		disk.NewBlkidProber(cfg.ProbeTimeout),
		cfg.TargetIdentifier)

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		must(enc.Encode(rows))
		return exitOK
	}
	if len(rows) == 0 {
		fmt.Printf("no devices under %s\n", cfg.DeviceDir)
		return exitOK
	}
	printProbeRows(os.Stdout, rows)
	return exitOK
}
