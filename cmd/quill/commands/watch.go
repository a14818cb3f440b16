package commands

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/quill/internal/core/domain"
)

type watchEvent struct {
	Key    string `json:"key"`
	Status string `json:"status"`
	Digest string `json:"digest"`
	Items  int    `json:"items"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

func (c *CLI) newWatchCmd() *cobra.Command {
	var (
		interval   time.Duration
		maxUpdates int
	)
	cmd := &cobra.Command{
		Use:   "watch <resource>",
		Short: "Print a listing every time its content changes",
		Long: "Observe a resource listing and print a line whenever the fetched content changes.\n" +
			"Resources: " + strings.Join(c.app.Features().Watchable(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			set := c.app.Features()

			// The callback keeps only the newest entry so a slow terminal
			// never blocks cache notifications.
			var (
				mu     sync.Mutex
				latest domain.Entry
			)
			changed := make(chan struct{}, 1)
			entry, stop, err := set.Watch(ctx, args[0], func(e domain.Entry) {
				mu.Lock()
				latest = e
				mu.Unlock()
				select {
				case changed <- struct{}{}:
				default:
				}
			})
			if err != nil {
				return err
			}
			defer stop()

			var tick <-chan time.Time
			if interval > 0 {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				tick = ticker.C
			}

			p := c.printer(cmd)
			var (
				printed    int
				lastDigest uint64
				lastStatus domain.Status
			)
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-tick:
					set.Client().Invalidate(entry.Key)
				case <-changed:
					mu.Lock()
					e := latest
					mu.Unlock()

					if !e.Settled() || (e.Digest == lastDigest && e.Status == lastStatus) {
						continue
					}
					lastDigest, lastStatus = e.Digest, e.Status

					if err := c.printWatchEvent(p, e); err != nil {
						return err
					}
					printed++
					if maxUpdates > 0 && printed >= maxUpdates {
						return nil
					}
				}
			}
		},
	}
	cmd.Flags().DurationVarP(&interval, "interval", "i", 0, "Refetch on this interval in addition to invalidations")
	cmd.Flags().IntVarP(&maxUpdates, "count", "n", 0, "Exit after this many printed updates (0 watches until interrupted)")
	return cmd
}

func (c *CLI) printWatchEvent(p printer, e domain.Entry) error {
	ev := watchEvent{
		Key:    e.Key.String(),
		Status: string(e.Status),
		Digest: strconv.FormatUint(e.Digest, 16),
		Items:  itemCount(e.Data),
	}
	if e.Err != nil {
		ev.Error = e.Err.Error()
	}

	if p.json {
		ev.Data = e.Data
		return p.encode(ev)
	}

	line := fmt.Sprintf("%s  %s  %s  %s  %d items",
		p.palette.Muted(e.UpdatedAt.Format(time.TimeOnly)), ev.Key, p.palette.Badge(ev.Status), ev.Digest, ev.Items)
	if ev.Error != "" {
		line += "  " + ev.Error
	}
	_, err := fmt.Fprintln(p.cmd.OutOrStdout(), line)
	return err
}

// itemCount returns the length of list data, or 1 for a single record.
func itemCount(data any) int {
	if data == nil {
		return 0
	}
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice {
		return v.Len()
	}
	return 1
}
