package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("irtcat", displayVersion(version))
	},
}

// displayVersion canonicalizes release versions ("1.2" becomes "v1.2.0")
// and passes anything else through.
func displayVersion(v string) string {
	if !semver.IsValid(v) && semver.IsValid("v"+v) {
		v = "v" + v
	}
	if semver.IsValid(v) {
		c := semver.Canonical(v)
		if b := semver.Build(v); b != "" {
			c += b
		}
		return c
	}
	return v
}
