package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepwake/sub-engine/internal/engine"
)

func newReplayCmd(a *app) *cobra.Command {
	var indent bool
	cmd := &cobra.Command{
		Use:   "replay [file]",
		Short: "Replay a SimulationInput JSON and print the SimulationLog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) > 0 && args[0] != "-" {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			log := a.logger(cmd.ErrOrStderr())
			result, err := engine.RunJSON(string(data))
			if err != nil {
				return fmt.Errorf("simulation error: %w", err)
			}
			log.Debug("replay finished", "bytes", len(result))

			if indent {
				var buf bytes.Buffer
				if err := json.Indent(&buf, []byte(result), "", "  "); err != nil {
					return err
				}
				result = buf.String()
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), result)
			return err
		},
	}
	cmd.Flags().BoolVar(&indent, "indent", false, "pretty-print the output")
	return cmd
}
