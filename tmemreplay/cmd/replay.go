package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/pkg/browser"
	"github.com/sarchlab/tmemsim/cmdstream"
	"github.com/sarchlab/tmemsim/datarecording"
	"github.com/sarchlab/tmemsim/monitoring"
	"github.com/sarchlab/tmemsim/tmem"
	"github.com/sarchlab/tmemsim/tracing"
	"github.com/spf13/cobra"
)

var replayCfg replayConfig

var replayCmd = &cobra.Command{
	Use:   "replay <stream>",
	Short: "Replay a command stream.",
	Long: "`replay <stream>` applies every command of the stream to a fresh " +
		"texture cache table and prints a summary. Use - to read stdin.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := replayCfg.applyEnv(cmd); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return runReplay(ctx, replayCfg, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCfg.bindFlags(replayCmd)
}

// printRenderer prints verdicts the way a renderer would act on them.
type printRenderer struct {
	w       io.Writer
	verbose bool
}

func (r printRenderer) TextureVerdict(v cmdstream.Verdict) {
	if !r.verbose {
		return
	}

	action := "upload"
	if v.SkipUpload() {
		action = "skip"
	}

	if v.Queried {
		fmt.Fprintf(r.w, "query unit %d: %s\n", v.Unit, v.Classification)
		return
	}

	fmt.Fprintf(r.w, "draw %d unit %d: %s (%s)\n",
		v.Draw, v.Unit, v.Classification, action)
}

func runReplay(
	ctx context.Context,
	cfg replayConfig,
	streamPath string,
	out io.Writer,
) error {
	cmds, err := readStream(streamPath)
	if err != nil {
		return err
	}

	builder := tmem.MakeBuilder()

	if cfg.loadState != "" {
		snapshot, err := os.ReadFile(cfg.loadState)
		if err != nil {
			return fmt.Errorf("loading state: %w", err)
		}

		builder = builder.WithSnapshot(snapshot)
	}

	counts := tracing.NewCountTracer()
	builder = builder.WithHook(counts)

	if cfg.logChanges {
		builder = builder.WithHook(
			tracing.NewLogTracer(log.New(os.Stderr, "tmem: ", 0)))
	}

	var recorder datarecording.DataRecorder
	if cfg.traceDB != "" {
		recorder = datarecording.New(cfg.traceDB)
		defer recorder.Close()

		builder = builder.WithHook(tracing.NewDBTracer(recorder))
	}

	table, err := buildTable(builder)
	if err != nil {
		return err
	}

	proc := cmdstream.NewProcessor(table, printRenderer{w: out, verbose: cfg.verbose})

	var bar *monitoring.ProgressBar
	if cfg.monitor {
		m := monitoring.NewMonitor(proc).WithPortNumber(cfg.monitorPort)
		m.RegisterCountTracer(counts)

		port, err := m.StartServer()
		if err != nil {
			return err
		}

		if cfg.openBrowser {
			url := fmt.Sprintf("http://localhost:%d/api/units", port)
			if err := browser.OpenURL(url); err != nil {
				fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
			}
		}

		bar = m.CreateProgressBar(streamPath, uint64(len(cmds)))
		defer m.CompleteProgressBar(bar)
	}

	for _, c := range cmds {
		if err := ctx.Err(); err != nil {
			return err
		}

		if bar != nil {
			bar.Begin(1)
		}

		if err := proc.Process(c); err != nil {
			return err
		}

		if bar != nil {
			bar.Done(1)
		}
	}

	if err := proc.Finish(); err != nil {
		return err
	}

	printSummary(out, proc.Stats(), counts)

	if cfg.saveState != "" {
		if err := saveState(table, cfg.saveState); err != nil {
			return err
		}
	}

	return nil
}

func readStream(path string) ([]cmdstream.Command, error) {
	var r io.Reader = os.Stdin

	if path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading stream: %w", err)
		}

		r = bytes.NewReader(data)
	}

	return cmdstream.Parse(r)
}

func buildTable(b tmem.Builder) (t *tmem.Tmem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("loading state: %v", r)
		}
	}()

	return b.Build("TMEM"), nil
}

func saveState(t *tmem.Tmem, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving state: %w", err)
	}

	if err := t.Save(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func printSummary(w io.Writer, s cmdstream.Stats, counts *tracing.CountTracer) {
	fmt.Fprintf(w, "commands:        %d\n", s.Commands)
	fmt.Fprintf(w, "draws:           %d\n", s.Draws)
	fmt.Fprintf(w, "binds:           %d\n", s.Binds)
	fmt.Fprintf(w, "skipped uploads: %d\n", s.CachedVerdicts)
	fmt.Fprintf(w, "uploads:         %d\n", s.UncachedVerdicts)
	fmt.Fprintf(w, "filtered writes: %d\n", s.FilteredWrites)
	fmt.Fprintf(w, "invalidations:   %d\n", s.Invalidations)
	fmt.Fprintf(w, "overlap demotes: %d\n",
		counts.CauseCount(tmem.CauseOverlap)+
			counts.CauseCount(tmem.CauseSelfOverlap))
}
