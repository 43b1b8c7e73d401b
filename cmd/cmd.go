// Package cmd provides the list of commands to ship, check and collect centralized logs
package cmd

import (
	"github.com/relex/gotils/config"
)

func init() {
	config.AddParentCmdWithArgs("", "pcdslog ships structured log events to the central PCDS log collector", &rootCmd, rootCmd.preRun, rootCmd.postRun)
	config.AddCmdWithArgs("run ...", "Forward each line from stdin as one log event", &runCmd, runCmd.run)
	config.AddCmdWithArgs("send ...", "Send one log message", &sendCmd, sendCmd.send)
	config.AddCmdWithArgs("enabled ...", "Print whether centralized logging is enabled for this host", &enabledCmd, enabledCmd.enabled)
	config.AddCmdWithArgs("listen ...", "Run a development collector printing received documents", &listenCmd, listenCmd.listen)
}

// Execute parses the command line and runs the specified command
func Execute() {
	config.Execute()
}
