// Command synapse generates HTTP handler types from annotated controllers.
package main

import "os"

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
