package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vbonduro/pantrysync/internal/domain"
)

// NewInitCommand creates the init command: the startup sync that pulls the
// remote registry or creates the default document when none exists.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Pull the remote registry, creating it if absent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Initialize(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "registry initialized")
			return nil
		},
	}
}

// NewPullCommand creates the pull command. Pull replaces local state with the
// remote registry, discarding unsynced local edits.
func NewPullCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Replace local state with the remote registry (discards local edits)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Pull(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "pulled remote registry")
			return nil
		},
	}
}

// NewPushCommand creates the push command.
func NewPushCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Write local state to the remote registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Push(cmd.Context()); err != nil {
				if errors.Is(err, domain.ErrStaleWrite) {
					return fmt.Errorf("%w; run pull first, then push again", err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "pushed local registry")
			return nil
		},
	}
}
