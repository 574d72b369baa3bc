// Command skygroup finds groups of blended objects in source catalogs.
package main

import "os"

var Version = "dev"

func main() {
	if err := newRootCmd(Version).Execute(); err != nil {
		os.Exit(1)
	}
}
