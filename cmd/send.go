package cmd

import (
	"strings"

	"github.com/pcdshub/pcdslog/base"
	"github.com/pcdshub/pcdslog/defs"
	"github.com/pcdshub/pcdslog/run"
	"github.com/relex/gotils/logger"
)

type sendCommandState struct {
	Config     string `help:"Configuration file path, empty to use defaults and environment variables"`
	Message    string `help:"Message to send"`
	Level      string `help:"Level name or number"`
	LoggerName string `help:"Name of the logger under pcds-logging, empty for pcds-logging itself"`
	Force      bool   `help:"Send even if this host is outside of the allowed domains"`
}

var sendCmd = sendCommandState{
	Level: "INFO",
}

func (cmd *sendCommandState) send(_ []string) {
	if cmd.Message == "" {
		logger.Fatal("--message is required")
	}
	level, err := base.ValidateLevel(cmd.Level)
	if err != nil {
		logger.Fatal("--level: ", err)
	}
	cfg, err := run.LoadConfig(cmd.Config)
	if err != nil {
		logger.Fatal(err)
	}
	session, err := run.Setup(cfg, run.SetupOptions{Force: cmd.Force})
	if err != nil {
		logger.Fatal(err)
	}
	if !session.Enabled {
		logger.Warnf("centralized logging is disabled for this host, use --force to send anyway")
	}

	session.Loggers.GetLogger(centralChildName(cmd.LoggerName)).Log(level, cmd.Message)
	session.Shutdown()
}

// centralChildName returns the full name of a logger under the central logger
func centralChildName(name string) string {
	switch {
	case name == "" || name == defs.CentralLoggerName:
		return defs.CentralLoggerName
	case strings.HasPrefix(name, defs.CentralLoggerName+"."):
		return name
	default:
		return defs.CentralLoggerName + "." + name
	}
}
