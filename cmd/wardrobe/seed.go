package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd(rt *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default categories into an empty catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, closeDB, err := rt.openCatalog()
			if err != nil {
				return err
			}
			defer closeDB()

			seeded, err := cat.service.SeedDefaultCategories(cmd.Context())
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "seeded default categories")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog already has categories; nothing seeded")
			}
			return nil
		},
	}
}
