package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"panopto-urls/internal/history"
	"panopto-urls/internal/httputil"
	"panopto-urls/internal/media"
	"panopto-urls/internal/output"
	"panopto-urls/internal/provider"
	"panopto-urls/internal/ui"
)

// extractRun is the default command: panopto-urls <podcast_url>
func extractRun(cmd *cobra.Command, args []string) error {
	podcastURL := args[0]

	p := provider.New(
		httputil.NewFetcher(newHTTPClient(timeout()), cfg.UserAgent),
		provider.Options{
			Routes:     provider.RouteTable{FeedPath: cfg.FeedPath, PagePath: cfg.PagePath},
			LoginPath:  cfg.LoginPath,
			CookieName: cfg.CookieName,
			KeepHash:   cfg.KeepHash,
		},
	)

	// Route before any network traffic so a bad URL fails fast.
	parse, route, err := p.Select(podcastURL)
	if err != nil {
		return err
	}

	label := "Fetching feed…"
	if route == media.Page {
		label = "Fetching viewer page…"
	}

	var entries []media.VideoEntry
	work := func() error {
		var err error
		entries, err = parse(cmd.Context(), podcastURL, cfg.Cookie)
		return err
	}
	if cfg.Debug {
		err = work()
	} else {
		err = ui.Spin(label, work)
	}
	if err != nil {
		return err
	}

	text := output.Format(entries, output.Options{
		Xargs:      cfg.Xargs,
		Cookie:     cfg.Cookie,
		CookieName: cfg.CookieName,
	})

	if flagOutput != "" {
		if err := output.WriteFile(flagOutput, text); err != nil {
			return err
		}
		log.Info("wrote video list", "videos", len(entries), "file", flagOutput)
	} else if err := output.Write(cmd.OutOrStdout(), text); err != nil {
		return err
	}

	if cfg.History {
		if err := recordRun(cmd.Context(), podcastURL, route, entries); err != nil {
			log.Warn("saving history failed", "err", err)
		}
	}

	return nil
}

func recordRun(ctx context.Context, podcastURL string, route media.Route, entries []media.VideoEntry) error {
	store, err := history.Open(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Save(ctx, media.Run{URL: podcastURL, Route: route, Entries: entries})
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	log.Debug("recorded run", "id", run.ID, "videos", run.Count)
	return nil
}
