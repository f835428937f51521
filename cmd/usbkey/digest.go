package main

import (
	"flag"
	"fmt"

	"usbkey/internal/keys"
)

// digest: print what unlock would print for this file, for enrolling the
// passphrase before the file is copied to the stick.
func cmdDigest(args []string) int {
	fs := flag.NewFlagSet("digest", flag.ExitOnError)
	file := fs.String("file", "", "key file")
	_ = fs.Parse(args)

	if *file == "" {
		fatal("digest: --file is required")
	}
	d, err := keys.FileDigest(*file)
	must(err)
	fmt.Println(d)
	return exitOK
}
