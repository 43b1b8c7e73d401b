package run

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pcdshub/pcdslog/defs"
	"github.com/pcdshub/pcdslog/util"
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
)

// Reloader reloads the config file into a Session on SIGHUP
type Reloader struct {
	logger   logger.Logger
	session  *Session
	filepath string
	signals  chan os.Signal
	stopped  *channels.SignalAwaitable
	stop     util.RunOnce
}

// StartReloader starts watching SIGHUP for the session
func StartReloader(session *Session, filepath string) *Reloader {
	reloader := &Reloader{
		logger:   logger.WithFields(logger.Fields{defs.LabelComponent: "Reloader", "file": filepath}),
		session:  session,
		filepath: filepath,
		signals:  make(chan os.Signal, 1),
		stopped:  channels.NewSignalAwaitable(),
	}
	reloader.stop = util.NewRunOnce(func() {
		signal.Stop(reloader.signals)
		reloader.stopped.Signal()
	})
	signal.Notify(reloader.signals, syscall.SIGHUP)
	go reloader.run()
	return reloader
}

// Reload loads the config file and applies it, keeping the current setup on failure
func (reloader *Reloader) Reload() bool {
	cfg, err := LoadConfigFile(reloader.filepath)
	if err != nil {
		reloader.logger.Error("failed to reload: ", err)
		reloadFailureCounter.Inc()
		return false
	}
	if err := reloader.session.Reload(cfg); err != nil {
		reloader.logger.Error("failed to apply reloaded config: ", err)
		reloadFailureCounter.Inc()
		return false
	}
	reloader.logger.Info("reloaded")
	reloadSuccessCounter.Inc()
	return true
}

// Stop stops watching signals
func (reloader *Reloader) Stop() {
	reloader.stop()
}

func (reloader *Reloader) run() {
	for {
		select {
		case <-reloader.signals:
			reloader.logger.Info("received SIGHUP, reloading")
			reloader.Reload()
		case <-reloader.stopped.Channel():
			return
		}
	}
}
