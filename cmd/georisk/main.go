// Command georisk scores geohazard risk from the command line or serves the
// HTTP API.
//
//	georisk assess --slope 35 --rain 0.8 --uncertainty=false
//	georisk lore score records.yaml
//	georisk serve --addr :8080
package main

import (
	"os"

	"github.com/raysh454/georisk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
