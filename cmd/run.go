package cmd

import (
	"context"
	"os"

	"github.com/pcdshub/pcdslog/base"
	"github.com/pcdshub/pcdslog/run"
	"github.com/pcdshub/pcdslog/util"
	"github.com/relex/gotils/logger"
)

type runCommandState struct {
	Config      string `help:"Configuration file path, empty to use defaults and environment variables"`
	MetricsAddr string `help:"The listener address to expose Prometheus metrics and debug information"`
	Level       string `help:"Level of forwarded lines"`
	Force       bool   `help:"Forward even if this host is outside of the allowed domains"`
}

var runCmd = runCommandState{
	MetricsAddr: ":9335",
	Level:       "INFO",
}

func (cmd *runCommandState) run(_ []string) {
	level, err := base.ValidateLevel(cmd.Level)
	if err != nil {
		logger.Fatal("--level: ", err)
	}

	msrv := util.LaunchMetricsListener(cmd.MetricsAddr)

	if err := run.Run(cmd.Config, run.SetupOptions{Force: cmd.Force}, os.Stdin, level); err != nil {
		logger.Errorf("%v", err)
	}

	if msrv != nil {
		if err := msrv.Shutdown(context.Background()); err != nil {
			logger.Errorf("error shutting down metrics listener: %v", err)
		}
	}
}
