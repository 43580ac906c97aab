// Command git-force-prefix rewrites HEAD's timestamps so its commit hash
// starts with a chosen hex prefix.
package main

import (
	"os"

	"github.com/kilupskalvis/git-force-prefix/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
