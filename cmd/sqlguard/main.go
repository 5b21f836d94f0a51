// Command sqlguard is the SqlGuard CLI: scan a project tree for unsafe
// MyBatis mapper statements, validate one statement ad hoc, serve the
// validation API over HTTP, or run the audit store's schema migrations.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
