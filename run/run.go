// Package run loads the configuration and sets up centralized logging for a process
package run

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pcdshub/pcdslog/base"
	"github.com/pcdshub/pcdslog/defs"
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
)

// LoadConfig loads the config file, or returns the default config with environment overrides if path is empty
func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		cfg := DefaultConfig()
		return cfg, VerifyConfig(cfg)
	}
	return LoadConfigFile(configFile)
}

// Run forwards each line from input as one event on the central logger, until the input ends or the process is
// stopped by SIGINT or SIGTERM
//
// The config file, if specified, is reloaded on SIGHUP
func Run(configFile string, opts SetupOptions, input io.Reader, level base.Level) error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}
	session, err := Setup(cfg, opts)
	if err != nil {
		return err
	}
	defer session.Shutdown()

	if configFile != "" {
		reloader := StartReloader(session, configFile)
		defer reloader.Stop()
	}

	runLogger := logger.WithField(defs.LabelComponent, "Launcher")

	inputEnded := channels.NewSignalAwaitable()
	var numLines int64
	var inputErr error
	go func() {
		defer inputEnded.Signal()
		numLines, inputErr = ForwardLines(session.CentralLogger, input, level)
	}()

	sigChan := make(chan os.Signal, 10)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case s := <-sigChan:
		runLogger.Infof("received %s, shutting down", s)
		return nil
	case <-inputEnded.Channel():
	}
	if inputErr != nil {
		return fmt.Errorf("failed to read input after %d lines: %w", numLines, inputErr)
	}
	runLogger.Infof("input ended after %d lines, shutting down", numLines)
	return nil
}

// ForwardLines logs each non-empty line from input at the given level, and returns the number of lines logged
func ForwardLines(target *base.EventLogger, input io.Reader, level base.Level) (int64, error) {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var count int64
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		target.Log(level, line)
		count++
	}
	return count, scanner.Err()
}
