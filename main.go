// The main package for the marketplace-scraper executable.
package main

import (
	"github.com/JakeFAU/marketplace-scraper/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
