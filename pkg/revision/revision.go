package revision

import (
	"flag"
	"fmt"
	"runtime"
)

// Build information. Populated at build-time.
var commit = "no commit"
var tag = "no tag"

// runtimeVersion is the version of the Go compiler used.
var runtimeVersion = fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)

// String returns the tag, commit and toolchain the binary was built from.
func String() string {
	return fmt.Sprintf("%s (%s) %s", tag, commit, runtimeVersion)
}

// Usage returns a function that prints the build information and the flags.
func Usage(binname string) func() {
	return func() {
		out := flag.CommandLine.Output()
		fmt.Fprintln(out, "Built from", String())
		fmt.Fprintf(out, "Usage: %s [options]\n", binname)
		flag.PrintDefaults()
	}
}
