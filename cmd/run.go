package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simgrid/simgrid-go/engine"
	"github.com/simgrid/simgrid-go/engine/actor"
	"github.com/simgrid/simgrid-go/engine/platform"
	"github.com/simgrid/simgrid-go/engine/plugin/energy"
	"github.com/simgrid/simgrid-go/engine/plugin/load"
	"github.com/simgrid/simgrid-go/engine/simgrid"
)

var (
	runHosts       int
	runHostSpeed   float64
	runBandwidth   float64
	runLatency     float64
	runHorizon     int64
	runScenario    string
	runTaskCount   int
	runTaskCost    float64
	runLogLevel    string
	runStackSizeKi int
	runNetModel    string
	runCrossTraff  bool
	runTCPGamma    float64
	runHostModel   string
	runPlugins     []string
	runMaxminPrec  float64
	runSurfPrec    float64
	runCfgEntries  []string
	runConfigFile  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation scenario over a generated cluster platform",
	Long: "Builds a flat cluster platform (engine/platform.Builder.Cluster) and\n" +
		"runs one of the built-in scenarios to completion or deadlock, printing\n" +
		"the resulting Report's final clock and completion count.",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(runLogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", runLogLevel, err)
		}
		logrus.SetLevel(level)

		cfg := engine.DefaultConfig()
		if runConfigFile != "" {
			fileCfg, err := engine.LoadConfigYAML(runConfigFile)
			if err != nil {
				return err
			}
			cfg = fileCfg
		}
		cfg.StackSizeKiB = runStackSizeKi
		cfg.NetworkModel = runNetModel
		cfg.NetworkCrossTraffic = runCrossTraff
		cfg.NetworkTCPGamma = runTCPGamma
		cfg.HostModel = runHostModel
		cfg.Plugins = append(cfg.Plugins, runPlugins...)
		cfg.MaxminPrecision = runMaxminPrec
		cfg.SurfPrecision = runSurfPrec
		for _, entry := range runCfgEntries {
			if err := cfg.ApplyCfgEntry(entry); err != nil {
				return err
			}
		}

		plat, err := buildClusterPlatform(runHosts, runHostSpeed, runBandwidth, runLatency)
		if err != nil {
			return fmt.Errorf("platform build: %w", err)
		}

		sim := simgrid.New(cfg, plat)
		if runHorizon > 0 {
			sim.SetHorizon(runHorizon)
		}
		wirePlugins(sim, cfg.Plugins)

		logrus.Infof("Starting scenario %q on %d hosts (speed=%.0f flop/s, bw=%.0f B/s, lat=%.6f)",
			runScenario, runHosts, runHostSpeed, runBandwidth, runLatency)

		switch runScenario {
		case "ping-pong":
			runPingPong(sim)
		case "master-worker":
			runMasterWorker(sim, runHosts, runTaskCount, runTaskCost)
		default:
			return fmt.Errorf("unknown scenario %q (want ping-pong or master-worker)", runScenario)
		}

		report, err := sim.Run(context.Background())
		if err != nil {
			logrus.Warnf("simulation ended with error: %v", err)
		}
		if report != nil {
			logrus.Infof("Simulation complete: clock=%d completed=%d deadlocked=%t",
				report.FinalClock, report.CompletedCount, report.Deadlocked)
		}
		return err
	},
}

// buildClusterPlatform is the programmatic equivalent of an unwritten
// `<cluster>` platform file (spec.md §6): a flat zone of n hosts sharing
// one backbone link, under an empty-routed root (engine/platform's
// Builder.Cluster helper builds the cluster's internal router itself).
func buildClusterPlatform(n int, speedFlops, bandwidth, latency float64) (*platform.Platform, error) {
	b := platform.NewBuilder("root", platform.RoutingEmpty, platform.NewEmptyRouter())
	b.Cluster("root", "cluster", "host", n, speedFlops, latency, bandwidth, latency, "host0")
	return b.Build()
}

// runPingPong deploys the two-actor scenario spec.md §8 names: one Send,
// one Recv, both waiting on the resulting activity.
func runPingPong(sim *simgrid.Simulation) {
	sim.CreateActor("host0", func(ctx *actor.Context) {
		h, err := sim.Send("ping", "host0", 1000, "ping")
		if err != nil {
			logrus.Errorf("ping-pong sender: %v", err)
			return
		}
		if err := h.Wait(ctx); err != nil {
			logrus.Errorf("ping-pong sender wait: %v", err)
		}
	})
	sim.CreateActor("host1", func(ctx *actor.Context) {
		h, err := sim.Recv("ping", "host1")
		if err != nil {
			logrus.Errorf("ping-pong receiver: %v", err)
			return
		}
		if err := h.Wait(ctx); err != nil {
			logrus.Errorf("ping-pong receiver wait: %v", err)
			return
		}
		logrus.Info("ping-pong: message delivered")
	})
}

// runMasterWorker deploys the master-worker round-robin scenario spec.md
// §8 names: a master hands taskCount fixed-cost Execs to n-1 workers in
// round-robin order over a shared mailbox per worker. Each worker's total
// share is computed up front so it can loop exactly that many times and
// stop, with no separate termination signal needed.
func runMasterWorker(sim *simgrid.Simulation, n, taskCount int, taskCost float64) {
	workers := n - 1
	if workers < 1 {
		workers = 1
	}
	shares := make([]int, workers)
	for i := 0; i < taskCount; i++ {
		shares[i%workers]++
	}

	for w := 0; w < workers; w++ {
		host := fmt.Sprintf("host%d", w+1)
		mbox := fmt.Sprintf("tasks-%d", w)
		share := shares[w]
		sim.CreateActor(host, func(ctx *actor.Context) {
			for i := 0; i < share; i++ {
				h, err := sim.Recv(mbox, host)
				if err != nil {
					logrus.Errorf("worker %s recv: %v", host, err)
					return
				}
				if err := h.Wait(ctx); err != nil {
					logrus.Errorf("worker %s wait: %v", host, err)
					return
				}
				eh, err := sim.Exec(host, taskCost)
				if err != nil {
					logrus.Errorf("worker %s exec: %v", host, err)
					return
				}
				if err := eh.Wait(ctx); err != nil {
					logrus.Errorf("worker %s exec wait: %v", host, err)
					return
				}
			}
		})
	}
	sim.CreateActor("host0", func(ctx *actor.Context) {
		for i := 0; i < taskCount; i++ {
			mbox := fmt.Sprintf("tasks-%d", i%workers)
			h, err := sim.Send(mbox, "host0", 0, i)
			if err != nil {
				logrus.Errorf("master dispatch %d: %v", i, err)
				return
			}
			if err := h.Wait(ctx); err != nil {
				logrus.Errorf("master dispatch %d wait: %v", i, err)
				return
			}
		}
	})
}

func wirePlugins(sim *simgrid.Simulation, names []string) {
	for _, name := range names {
		switch name {
		case "energy":
			energy.New().Init(sim.Hooks())
		case "load":
			load.New().Init(sim.Hooks())
		default:
			logrus.Warnf("unknown plugin %q ignored", name)
		}
	}
}

func init() {
	runCmd.Flags().IntVar(&runHosts, "hosts", 4, "Number of hosts in the generated cluster")
	runCmd.Flags().Float64Var(&runHostSpeed, "host-speed", 1e9, "Per-host compute speed, in FLOP/s")
	runCmd.Flags().Float64Var(&runBandwidth, "bandwidth", 1e9, "Backbone link bandwidth, in bytes/s")
	runCmd.Flags().Float64Var(&runLatency, "latency", 1e-4, "Link/route latency, in simulated seconds")
	runCmd.Flags().Int64Var(&runHorizon, "horizon", 0, "Simulation horizon in ticks (0 = run to completion)")
	runCmd.Flags().StringVar(&runScenario, "scenario", "ping-pong", "Scenario to run: ping-pong or master-worker")
	runCmd.Flags().IntVar(&runTaskCount, "tasks", 8, "master-worker: number of tasks to dispatch")
	runCmd.Flags().Float64Var(&runTaskCost, "task-cost", 1e8, "master-worker: FLOPs per task")
	runCmd.Flags().StringVar(&runLogLevel, "log", "info", "Log level (debug, info, warn, error)")

	runCmd.Flags().IntVar(&runStackSizeKi, "stack-size", engine.DefaultConfig().StackSizeKiB, "contexts/stack-size (no-op on goroutine stacks)")
	runCmd.Flags().StringVar(&runNetModel, "network-model", engine.DefaultConfig().NetworkModel, "network/model")
	runCmd.Flags().BoolVar(&runCrossTraff, "network-crosstraffic", false, "network/crosstraffic")
	runCmd.Flags().Float64Var(&runTCPGamma, "network-tcp-gamma", 0, "network/TCP-gamma")
	runCmd.Flags().StringVar(&runHostModel, "host-model", engine.DefaultConfig().HostModel, "host/model")
	runCmd.Flags().StringArrayVar(&runPlugins, "plugin", nil, "plugin: <name> (repeatable; energy, load)")
	runCmd.Flags().Float64Var(&runMaxminPrec, "maxmin-precision", engine.DefaultConfig().MaxminPrecision, "maxmin/precision")
	runCmd.Flags().Float64Var(&runSurfPrec, "surf-precision", engine.DefaultConfig().SurfPrecision, "surf/precision")
	runCmd.Flags().StringArrayVar(&runCfgEntries, "cfg", nil, "generic key:value config entry (forward-compatible with unmodeled keys)")
	runCmd.Flags().StringVar(&runConfigFile, "config-file", "", "load base Config from a YAML fixture before applying flags/--cfg overrides")

	rootCmd.AddCommand(runCmd)
}
