package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/jessevdk/go-flags"
	"github.com/samvad-hq/neura-briefing/internal/app"
	"github.com/samvad-hq/neura-briefing/internal/config"
	"github.com/samvad-hq/neura-briefing/internal/domain"
	"github.com/samvad-hq/neura-briefing/internal/logger"
	"github.com/samvad-hq/neura-briefing/internal/pipeline"
)

type options struct {
	Topics  []string `short:"t" long:"topic" description:"Topic to brief on (repeatable, at most 3)"`
	Region  string   `short:"r" long:"region" description:"Two-letter region code (defaults to saved preferences)"`
	Profile string   `long:"profile" description:"Preference profile to load and save"`
	Save    bool     `long:"save" description:"Save the given topics and region as the profile preferences"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "briefing failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.DebugObj("briefing cli starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	briefing, err := app.NewBriefing(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize briefing", "error", err.Error())
		return err
	}
	defer briefing.Close()

	profile := opts.Profile
	if profile == "" {
		profile = briefing.DefaultProfile()
	}

	topics, region := opts.Topics, opts.Region
	if len(topics) == 0 {
		saved := briefing.Preferences().Load(ctx, profile)
		topics = saved.Topics
		if region == "" {
			region = saved.Country
		}
	}

	if opts.Save {
		out := briefing.Preferences().Save(ctx, profile, domain.PreferenceRecord{Topics: topics, Country: region})
		fmt.Fprintln(os.Stderr, out.Message)
	}

	st := render(os.Stdout, briefing.Run(ctx, topics, region))
	return st.Err
}

// render prints log lines as they arrive, then the result table and summary.
func render(w io.Writer, snaps iter.Seq[pipeline.Snapshot]) pipeline.State {
	var st pipeline.State
	for snap := range snaps {
		st.Apply(snap)
		if snap.Line != "" {
			fmt.Fprintln(w, snap.Line)
		}
	}

	if len(st.Table) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TOPIC\tSOURCE\tTITLE")
		for _, row := range st.Table {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Topic, row.Source, row.Title)
		}
		tw.Flush()
	}

	if summary := strings.TrimSpace(st.Summary); summary != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, summary)
	}
	return st
}
