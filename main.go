// Command cipherbench benchmarks symmetric ciphers across compute backends.
package main

import (
	"os"

	"github.com/idelchi/cipherbench/internal/commands"
)

// version is set at build time.
var version = "unknown - unofficial & generated by unknown"

func main() {
	os.Exit(commands.Execute(version))
}
