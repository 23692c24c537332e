package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hennalash/go-client/tui"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the backend, or keep it warm with --watch",
	Long: `Sends a lightweight HEAD request to the backend health endpoint.
With --watch the command keeps running and pings on an interval, which
keeps a free-tier backend from going to sleep.`,
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")
		if !watch {
			start := time.Now()
			var err error
			tui.ShowSpinner("Ping ...", func() {
				err = a.session.Client().Head(cmd.Context(), "/api/ping")
			})
			if err != nil {
				tui.ShowError("Le serveur ne répond pas : %s", err)
				return nil
			}
			tui.ShowSuccess("Serveur joignable (%s).", time.Since(start).Round(time.Millisecond))
			return nil
		}

		pinger := a.newPinger(cmd)
		pinger.Start()
		defer pinger.Stop()
		tui.ShowSuccess("Keep-alive démarré. Ctrl+C pour arrêter.")

		done := make(chan os.Signal, 1)
		signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-done:
		case <-cmd.Context().Done():
		}
		return nil
	}),
}

func init() {
	pingCmd.Flags().Bool("watch", false, "ping continuously on an interval")
	pingCmd.Flags().String("ping-interval", "", "interval between pings in watch mode (e.g. 45s, 1m30s)")
	rootCmd.AddCommand(pingCmd)
}
