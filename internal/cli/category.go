package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vbonduro/pantrysync/internal/domain"
	"github.com/vbonduro/pantrysync/internal/service"
)

// NewCategoryCommand creates the category command group.
func NewCategoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage ingredient categories",
	}

	cmd.AddCommand(newCategoryAddCommand(rootOpts))
	cmd.AddCommand(newCategoryListCommand(rootOpts))
	cmd.AddCommand(newCategoryRenameCommand(rootOpts))
	cmd.AddCommand(newCategoryRemoveCommand(rootOpts))

	return cmd
}

func newCategoryAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			category, err := svc.CreateCategory(cmd.Context(), service.CategoryInput{Name: args[0]})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created category %s (%s)\n", category.Name, category.ID)
			return nil
		},
	}
}

func newCategoryListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			categories, err := svc.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.ID, c.Name)
			}
			return nil
		},
	}
}

func newCategoryRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			category, err := svc.UpdateCategory(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed category %s to %s\n", category.ID, category.Name)
			return nil
		},
	}
}

func newCategoryRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a category (rejected while ingredients reference it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.DeleteCategory(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, domain.ErrCategoryInUse) {
					return fmt.Errorf("%w; move or delete its ingredients first", err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted category %s\n", args[0])
			return nil
		},
	}
}
