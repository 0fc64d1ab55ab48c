package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wardrobeassistant/wardrobe/internal/service"
)

func newCategoriesCmd(rt *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "List and edit categories",
	}
	cmd.AddCommand(
		newCategoriesListCmd(rt),
		newCategoriesAddCmd(rt),
		newCategoriesRenameCmd(rt),
		newCategoriesDeleteCmd(rt),
	)
	return cmd
}

func newCategoriesListCmd(rt *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, closeDB, err := rt.openCatalog()
			if err != nil {
				return err
			}
			defer closeDB()

			summaries, err := cat.service.ListCategorySummaries(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tORDER\tITEMS")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", s.ID, s.Name, s.DisplayOrder, s.ItemCount)
			}
			return tw.Flush()
		},
	}
}

func newCategoriesAddCmd(rt *app) *cobra.Command {
	var order int
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closeDB, err := rt.openCatalog()
			if err != nil {
				return err
			}
			defer closeDB()

			category, err := cat.service.CreateCategory(cmd.Context(), service.CreateCategoryInput{
				Name:         args[0],
				DisplayOrder: order,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), category.ID)
			return nil
		},
	}
	cmd.Flags().IntVar(&order, "order", 0, "display order; lower sorts first")
	return cmd
}

func newCategoriesRenameCmd(rt *app) *cobra.Command {
	var order int
	cmd := &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a category, optionally moving it with --order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closeDB, err := rt.openCatalog()
			if err != nil {
				return err
			}
			defer closeDB()

			current, err := cat.service.GetCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("order") {
				order = current.DisplayOrder
			}

			_, err = cat.service.UpdateCategory(cmd.Context(), args[0], service.UpdateCategoryInput{
				Name:         args[1],
				DisplayOrder: order,
			})
			return err
		},
	}
	cmd.Flags().IntVar(&order, "order", 0, "new display order")
	return cmd
}

func newCategoriesDeleteCmd(rt *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a category and every item in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closeDB, err := rt.openCatalog()
			if err != nil {
				return err
			}
			defer closeDB()

			return cat.service.DeleteCategory(cmd.Context(), args[0])
		},
	}
}
