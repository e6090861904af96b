// SPDX-License-Identifier: MPL-2.0

// Command simbench is a benchmarking harness for large numerical simulation
// runs: it provisions run directories from input manifests, reads profiling
// dumps, and compares result tables against stored references.
package main

import (
	cmd "simbench-cli/cmd/simbench"
)

func main() {
	cmd.Execute()
}
