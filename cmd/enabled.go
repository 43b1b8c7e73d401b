package cmd

import (
	"fmt"
	"os"

	"github.com/pcdshub/pcdslog/central"
	"github.com/pcdshub/pcdslog/run"
	"github.com/pcdshub/pcdslog/util"
	"github.com/relex/gotils/logger"
)

type enabledCommandState struct {
	Config string `help:"Configuration file path, empty to use defaults and environment variables"`
}

var enabledCmd enabledCommandState

func (cmd *enabledCommandState) enabled(_ []string) {
	cfg, err := run.LoadConfig(cmd.Config)
	if err != nil {
		logger.Fatal(err)
	}
	fqdn := util.GetFullyQualifiedDomainName()
	enabled := central.EnabledFor(fqdn, cfg.Central.AllowedDomains)
	fmt.Printf("%s: %t\n", fqdn, enabled)
	if !enabled {
		os.Exit(1)
	}
}
