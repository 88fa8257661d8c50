// Command strictstates checks HCL state declarations and queries the
// registries built from them.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

var version = "dev"

const description = `Builds strict state registries from HCL declarations.

Every namespace block in the given files is built into a registry; any
malformed declaration or duplicate state key makes the command fail.`

func newApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:        "strictstates",
		Usage:       "check and query strict state declarations",
		Description: description,
		Version:     version,
		Writer:      out,
		ErrWriter:   errOut,
		Flags:       globalFlags,
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "build every declared namespace and report its machines",
				Action: checkAction,
			},
			{
				Name:      "lookup",
				Usage:     "print the canonical value of each key",
				ArgsUsage: "KEY...",
				Flags:     []cli.Flag{namespaceFlag, machineFlag},
				Action:    lookupAction,
			},
			{
				Name:   "values",
				Usage:  "print every canonical value of a machine",
				Flags:  []cli.Flag{namespaceFlag, machineFlag},
				Action: valuesAction,
			},
			{
				Name:   "graph",
				Usage:  "render a namespace as a Mermaid or DOT diagram",
				Flags:  []cli.Flag{namespaceFlag, formatFlag, directionFlag},
				Action: graphAction,
			},
		},
	}
}

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
