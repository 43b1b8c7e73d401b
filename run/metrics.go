package run

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	setupCounter         prometheus.Counter
	reloadSuccessCounter prometheus.Counter
	reloadFailureCounter prometheus.Counter
)

func init() {
	setupOpts := prometheus.CounterOpts{}
	setupOpts.Name = "pcdslog_setups_total"
	setupOpts.Help = "Numbers of successful setups"
	setupCounter = prometheus.NewCounter(setupOpts)
	prometheus.MustRegister(setupCounter)

	opts := prometheus.CounterOpts{}
	opts.Name = "pcdslog_reloads_total"
	opts.Help = "Numbers of reloads"
	vec := prometheus.NewCounterVec(opts, []string{"status"})
	prometheus.MustRegister(vec)

	reloadSuccessCounter = vec.WithLabelValues("success")
	reloadFailureCounter = vec.WithLabelValues("failure")
}
