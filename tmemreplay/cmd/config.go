package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// Environment variables that provide flag defaults.
const (
	envTraceDB     = "TMEMSIM_TRACE_DB"
	envMonitorPort = "TMEMSIM_MONITOR_PORT"
)

type replayConfig struct {
	loadState   string
	saveState   string
	traceDB     string
	logChanges  bool
	monitor     bool
	monitorPort int
	openBrowser bool
	verbose     bool
}

func (c *replayConfig) bindFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&c.loadState, "load-state", "",
		"Start from a saved texture cache snapshot")
	f.StringVar(&c.saveState, "save-state", "",
		"Save the texture cache snapshot after the replay")
	f.StringVar(&c.traceDB, "trace-db", "",
		"Record classification changes into this SQLite database "+
			"(without the .sqlite3 suffix)")
	f.BoolVar(&c.logChanges, "log", false,
		"Log every classification change to stderr")
	f.BoolVar(&c.monitor, "monitor", false,
		"Serve the live state over HTTP")
	f.IntVar(&c.monitorPort, "monitor-port", 0,
		"Port of the monitoring server, random if 0")
	f.BoolVar(&c.openBrowser, "open-browser", false,
		"Open the monitoring server in a browser")
	f.BoolVar(&c.verbose, "verbose", false,
		"Print every verdict")
}

// applyEnv fills flags the user did not set from the environment.
func (c *replayConfig) applyEnv(cmd *cobra.Command) error {
	if v, ok := os.LookupEnv(envTraceDB); ok && !cmd.Flags().Changed("trace-db") {
		c.traceDB = v
	}

	if v, ok := os.LookupEnv(envMonitorPort); ok &&
		!cmd.Flags().Changed("monitor-port") {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envMonitorPort, err)
		}

		c.monitorPort = port
	}

	return c.validate()
}

func (c *replayConfig) validate() error {
	if c.openBrowser && !c.monitor {
		return fmt.Errorf("--open-browser requires --monitor")
	}

	if c.monitorPort < 0 || c.monitorPort > 65535 {
		return fmt.Errorf("monitor port %d out of range", c.monitorPort)
	}

	return nil
}
