package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vbonduro/pantrysync/internal/service"
)

// NewIngredientCommand creates the ingredient command group.
func NewIngredientCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingredient",
		Short: "Manage ingredients",
	}

	cmd.AddCommand(newIngredientAddCommand(rootOpts))
	cmd.AddCommand(newIngredientListCommand(rootOpts))
	cmd.AddCommand(newIngredientSetCommand(rootOpts))
	cmd.AddCommand(newIngredientRemoveCommand(rootOpts))

	return cmd
}

func newIngredientAddCommand(rootOpts *RootOptions) *cobra.Command {
	var categoryID, unit string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an ingredient in a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			ingredient, err := svc.CreateIngredient(cmd.Context(), service.IngredientInput{
				Name:        args[0],
				CategoryID:  categoryID,
				DefaultUnit: unit,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created ingredient %s (%s) in %s\n",
				ingredient.Name, ingredient.ID, ingredient.Category.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryID, "category", "", "category id (required)")
	cmd.Flags().StringVar(&unit, "unit", "", "default unit, e.g. g or ml")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newIngredientListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ingredients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			ingredients, err := svc.ListIngredients(cmd.Context())
			if err != nil {
				return err
			}
			for _, i := range ingredients {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", i.ID, i.Name, i.DefaultUnit, i.Category.Name)
			}
			return nil
		},
	}
}

func newIngredientSetCommand(rootOpts *RootOptions) *cobra.Command {
	var name, categoryID, unit string

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update an ingredient; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			existing, err := svc.GetIngredient(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = existing.Name
			}
			if unit == "" {
				unit = existing.DefaultUnit
			}
			if categoryID == "" {
				categoryID = existing.Category.ID
			}

			ingredient, err := svc.UpdateIngredient(cmd.Context(), args[0], name, unit, categoryID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated ingredient %s (%s)\n", ingredient.Name, ingredient.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&unit, "unit", "", "new default unit")
	cmd.Flags().StringVar(&categoryID, "category", "", "new category id")

	return cmd
}

func newIngredientRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.DeleteIngredient(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted ingredient %s\n", args[0])
			return nil
		},
	}
}
