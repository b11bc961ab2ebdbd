package main

import (
	"tgnvoda/cmd/tgnvoda-cli/commands"
	"tgnvoda/lib/util/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
