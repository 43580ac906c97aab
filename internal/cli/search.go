package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilupskalvis/git-force-prefix/internal/config"
	"github.com/kilupskalvis/git-force-prefix/internal/core"
	"github.com/kilupskalvis/git-force-prefix/internal/gitrepo"
	"github.com/kilupskalvis/git-force-prefix/internal/models"
)

func runSearch(cmd *cobra.Command, opts *options, prefix string) error {
	// Reject a bad prefix before touching the repository.
	if _, err := core.ParsePrefix(prefix); err != nil {
		return err
	}

	c, err := initContext(cmd, opts)
	if err != nil {
		return err
	}
	cfg := c.Config
	stderr := cmd.ErrOrStderr()
	setupLogging(stderr, cfg.LogLevel)
	if cfg.Path() != "" {
		slog.Debug("loaded config", slog.String("path", cfg.Path()))
	}

	head, err := c.Repo.ReadHead()
	if err != nil {
		return err
	}
	if head.DroppedSignature {
		color.New(color.FgYellow).Fprintln(stderr, "warning: HEAD is signed; the amended commit will not carry a signature")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := &core.Progress{}
	res, err := core.Search(ctx, head.Fields, head.Anchor, prefix, core.SearchOptions{
		EnumOptions: core.EnumOptions{
			Radius:        cfg.Radius,
			ForwardOnly:   cfg.ForwardOnly,
			PreserveOrder: cfg.PreserveOrder,
			OffsetSteps:   cfg.OffsetSteps,
		},
		Workers:  cfg.Workers,
		Progress: progress,
	})
	if err != nil {
		return err
	}
	logSummary(res)

	if !res.Found() {
		return fmt.Errorf("%w: no hash starting with %q within %d seconds of HEAD's timestamps after %s attempts (try a larger --radius)",
			core.ErrSearchExhausted, prefix, cfg.Radius, humanize.Comma(int64(res.Attempts)))
	}
	if err := core.Verify(head.Fields, res); err != nil {
		return err
	}

	printFound(stderr, res)

	if opts.apply {
		newHash, err := c.Repo.Apply(head, res)
		if err != nil {
			return err
		}
		printApplied(cmd.OutOrStdout(), head, newHash.String())
		return nil
	}
	return writeReplay(cmd.OutOrStdout(), cfg.Format, prefix, head.Fields, res)
}

func logSummary(res *core.Result) {
	rate := 0.0
	if secs := res.Elapsed.Seconds(); secs > 0 {
		rate = float64(res.Attempts) / secs
	}
	slog.Info("search finished",
		slog.String("outcome", res.Outcome.String()),
		slog.String("attempts", humanize.Comma(int64(res.Attempts))),
		slog.String("rate", humanize.SIWithDigits(rate, 1, "H/s")),
		slog.Duration("elapsed", res.Elapsed),
	)
}

func printFound(w io.Writer, res *core.Result) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "Found %s", res.Digest)
	fmt.Fprintf(w, " (author %+ds, committer %+ds, %ds total)\n",
		res.Candidate.AuthorDelta(res.Anchor), res.Candidate.CommitterDelta(res.Anchor),
		res.Candidate.Deviation(res.Anchor))
}

func printApplied(w io.Writer, head *gitrepo.Head, newHash string) {
	yellow := color.New(color.FgYellow)
	target := head.Ref.Short()
	if head.Detached() {
		target = "detached HEAD"
	}
	yellow.Fprintf(w, "[%s %s] ", target, newHash[:7])
	fmt.Fprintf(w, "amended from %s\n", head.Hash.ShortID())
}

// replayJSON is the json output format.
type replayJSON struct {
	Prefix        string   `json:"prefix"`
	Hash          string   `json:"hash"`
	AuthorDate    string   `json:"author_date"`
	CommitterDate string   `json:"committer_date"`
	AuthorTime    string   `json:"author_time"`
	CommitterTime string   `json:"committer_time"`
	Replayable    bool     `json:"replayable"`
	Env           []string `json:"env,omitempty"`
	Command       string   `json:"command,omitempty"`
	Attempts      uint64   `json:"attempts"`
}

// writeReplay prints the found commit in format. The command and env
// formats are refused when git commit could not rebuild the exact object.
func writeReplay(w io.Writer, format, prefix string, fields *models.CommitFields, res *core.Result) error {
	r := core.Format(fields, res.Candidate)
	replayErr := core.CheckReplayable(fields, res.Candidate)

	if format == config.FormatJSON {
		out := replayJSON{
			Prefix:        prefix,
			Hash:          res.Digest.String(),
			AuthorDate:    r.AuthorDate,
			CommitterDate: r.CommitterDate,
			AuthorTime:    r.AuthorTime.Format(time.RFC3339),
			CommitterTime: r.CommitterTime.Format(time.RFC3339),
			Replayable:    replayErr == nil,
			Attempts:      res.Attempts,
		}
		if replayErr == nil {
			out.Env = r.Env()
			out.Command = r.Command()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if replayErr != nil {
		return fmt.Errorf("%w (use --apply to write the commit directly)", replayErr)
	}
	if format == config.FormatEnv {
		for _, kv := range r.Env() {
			k, v, _ := strings.Cut(kv, "=")
			if _, err := fmt.Fprintf(w, "export %s=%s\n", k, core.ShellQuote(v)); err != nil {
				return err
			}
		}
		return nil
	}
	_, err := fmt.Fprintln(w, r.Command())
	return err
}
