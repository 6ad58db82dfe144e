// Command keygen prints the licence key for one or more user names.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/mls/internal/cryptox"
)

func main() {
	scheme := flag.String("k", cryptox.SchemeMD5, "key scheme (md5, blake2b)")
	secret := flag.String("s", "", "secret key for keyed schemes")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-k scheme] [-s secret] user...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	keys, err := cryptox.NewDeriver(*scheme, *secret)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	for _, user := range flag.Args() {
		fmt.Printf("%s\t%s\n", user, keys.DeriveKey(user))
	}
}
