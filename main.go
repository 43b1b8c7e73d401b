package main

import (
	"runtime"

	"github.com/pcdshub/pcdslog/cmd"
	"github.com/pcdshub/pcdslog/output/jsonevent"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"
)

var version string

func main() {
	logger.Infof("version: %s", version)
	logger.Infof("GOMAXPROCS: %d", runtime.GOMAXPROCS(0))

	if version != "" {
		jsonevent.RegisterComponentVersion("pcdslog", version)
	}
	registerInfoMetric()

	cmd.Execute()
}

func registerInfoMetric() {
	opts := prometheus.GaugeOpts{}
	opts.Name = "pcdslog_info"
	opts.Help = "pcdslog application information"
	gauge := prometheus.NewGaugeVec(opts, []string{"version"})
	gauge.WithLabelValues(version).Set(1)
	prometheus.MustRegister(gauge)
}
