package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pvrxr/pvrxr/internal/probe"
	"github.com/pvrxr/pvrxr/internal/pvr"
)

func newStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Probe the HMD service and print the runtime status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			status, err := probe.Run(newServiceClient(cfg))
			if err != nil {
				if errors.Is(err, pvr.ResRPCFailed) {
					return fmt.Errorf("HMD service is not running: %w", err)
				}
				return fmt.Errorf("status probe failed: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}

			printStatus(status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func printStatus(s probe.Status) {
	fmt.Printf("Refresh rate:          %.0f Hz\n", s.RefreshRate)
	fmt.Printf("Recommended size:      %dx%d\n", s.ResolutionWidth, s.ResolutionHeight)
	fmt.Printf("FOV level:             %d\n", s.FovLevel)
	fmt.Printf("Horizontal FOV:        %.1f deg\n", s.Fov)
	fmt.Printf("Floor height:          %.2f m\n", s.FloorHeight)
	fmt.Printf("Parallel projection:   %s\n", onOff(s.UseParallelProjection))
	fmt.Printf("Smart smoothing:       %s\n", onOff(s.UseSmartSmoothing))
	fmt.Printf("Lighthouse tracking:   %s\n", onOff(s.UseLighthouseTracking))
	if s.FPS > 0 {
		fmt.Printf("Client FPS:            %.1f\n", s.FPS)
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
