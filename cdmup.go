// cdmup is a single executable structured with the subcommand pattern, as is
// common for cloud utilities. All real work happens under cmd/.
package main

import "github.com/cdftools/cdmup/cmd"

func main() {
	cmd.Execute()
}
