// Command linetiles draws tiled line-profile figures, spectrum overlays and line labels for
// grids of circumstellar envelope models. See cmd/root.go for the subcommands.
package main

import (
	"github.com/linetiles/linetiles/cmd"
)

func main() {
	cmd.Execute()
}
