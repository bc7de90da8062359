// Command chimera runs multicast, interception and completion barrier scenarios.
package main

import (
	"os"

	"github.com/tessro/chimera/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
