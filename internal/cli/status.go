package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	var showChanges bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the registry's sync state and pending changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			status, err := svc.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state:        %s\n", status.State)
			fmt.Fprintf(out, "categories:   %d\n", status.Categories)
			fmt.Fprintf(out, "ingredients:  %d\n", status.Ingredients)
			fmt.Fprintf(out, "pending:      %d\n", status.PendingChanges)
			if status.LastSyncTime != nil {
				fmt.Fprintf(out, "last sync:    %s\n", status.LastSyncTime.Format(time.RFC3339))
			} else {
				fmt.Fprintf(out, "last sync:    never\n")
			}

			if showChanges && status.PendingChanges > 0 {
				changes, err := svc.PendingChanges(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				for _, c := range changes {
					fmt.Fprintf(out, "%s\t%s\t%s\n", c.Op, c.Kind, c.ID)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showChanges, "changes", false, "list each pending change")

	return cmd
}
