package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pvrxr/pvrxr/internal/pvrsim"
)

func newSimulateCmd() *cobra.Command {
	var (
		product    string
		cantingDeg float32
		refresh    float32
		absent     bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a simulated HMD service (foreground)",
		Long: `Run a stand-in HMD service on the service socket so the shim and its
tooling can be exercised without hardware or the vendor service.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			profile := pvrsim.DefaultProfile()
			if product != "" {
				profile.ProductName = product
			}
			profile.CantingDeg = cantingDeg
			profile.RefreshRate = refresh
			if absent {
				profile.Status.HmdPresent = false
			}

			srv, err := pvrsim.NewServer(profile, cfg.SocketPath, log.Logger)
			if err != nil {
				return err
			}
			if err := srv.Start(); err != nil {
				return err
			}
			defer srv.Stop()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Info().Str("signal", sig.String()).Msg("stopping simulator")
			return nil
		},
	}

	defaults := pvrsim.DefaultProfile()
	cmd.Flags().StringVar(&product, "product", "", "Simulated product name")
	cmd.Flags().Float32Var(&cantingDeg, "canting", defaults.CantingDeg, "Per-eye panel canting in degrees")
	cmd.Flags().Float32Var(&refresh, "refresh", defaults.RefreshRate, "Panel refresh rate in Hz")
	cmd.Flags().BoolVar(&absent, "absent", false, "Report the headset as not present")

	return cmd
}
