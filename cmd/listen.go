package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pcdshub/pcdslog/collector"
	"github.com/pcdshub/pcdslog/defs"
	"github.com/pcdshub/pcdslog/util"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
)

type listenCommandState struct {
	Protocol    string `help:"tcp or udp"`
	Address     string `help:"Address to listen on"`
	Save        string `help:"Also save documents to a JSON-lines file, compressed if the name ends with .gz or .zst"`
	Quiet       bool   `help:"Don't print received documents"`
	MetricsAddr string `help:"The listener address to expose Prometheus metrics and debug information"`
}

var listenCmd = listenCommandState{
	Protocol: defs.DefaultLogProto,
	Address:  "localhost:54320",
}

func (cmd *listenCommandState) listen(_ []string) {
	var sinks collector.MultiSink
	if !cmd.Quiet {
		sinks = append(sinks, collector.NewPrintSink(os.Stdout))
	}
	var fileSink *collector.FileSink
	if cmd.Save != "" {
		var err error
		fileSink, err = collector.NewFileSink(cmd.Save)
		if err != nil {
			logger.Fatal("--save: ", err)
		}
		sinks = append(sinks, fileSink)
	}

	msrv := util.LaunchMetricsListener(cmd.MetricsAddr)
	c, err := collector.Listen(logger.Root(), cmd.Protocol, cmd.Address, sinks, promreg.NewMetricFactory("pcdslog_", nil, nil))
	if err != nil {
		logger.Fatal(err)
	}
	c.Start()

	sigChan := make(chan os.Signal, 10)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigChan
	logger.Infof("received %s, shutting down", s)

	c.Stop()
	if fileSink != nil {
		if err := fileSink.Close(); err != nil {
			logger.Errorf("failed to close %s: %v", cmd.Save, err)
		}
	}
	if msrv != nil {
		if err := msrv.Shutdown(context.Background()); err != nil {
			logger.Errorf("error shutting down metrics listener: %v", err)
		}
	}
}
