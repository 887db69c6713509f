package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/scrape-go/internal/backend"
	"github.com/quantmind-br/scrape-go/internal/config"
	"github.com/quantmind-br/scrape-go/internal/domain"
)

// buildDoctorCmd reports which backends and extraction provider are
// actually usable with the loaded configuration, without performing a
// scrape. Direct is always available; Rendering and Bypass depend on a
// browser binary and TLS client construction succeeding.
func buildDoctorCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Report backend and extraction availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			direct := backend.NewDirectBackend(cfg.Backends.Direct)
			report(out, direct.ID(), direct.Available())

			if rendering, err := backend.NewRenderingBackend(cfg.Backends.Rendering); err != nil {
				reportErr(out, domain.Rendering, err)
			} else {
				report(out, rendering.ID(), rendering.Available())
				_ = rendering.Close()
			}

			if bypass, err := backend.NewBypassBackend(cfg.Backends.Bypass); err != nil {
				reportErr(out, domain.Bypass, err)
			} else {
				report(out, bypass.ID(), bypass.Available())
			}

			if cfg.ExtractionEnabled() {
				fmt.Fprintf(out, "Extraction (%s):    configured\n", cfg.LLM.Provider)
			} else {
				fmt.Fprintln(out, "Extraction:         not configured")
			}

			return nil
		},
	}
}

func report(out io.Writer, id domain.BackendID, available bool) {
	status := "available"
	if !available {
		status = "unavailable"
	}
	fmt.Fprintf(out, "%-18s %s\n", id.String()+":", status)
}

func reportErr(out io.Writer, id domain.BackendID, err error) {
	fmt.Fprintf(out, "%-18s unavailable (%v)\n", id.String()+":", err)
}
