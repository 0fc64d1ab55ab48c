package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wardrobeassistant/wardrobe/internal/pictures"
	"github.com/wardrobeassistant/wardrobe/internal/service"
)

func newItemsCmd(rt *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "List, add, delete, export and import items",
	}
	cmd.AddCommand(
		newItemsListCmd(rt),
		newItemsAddCmd(rt),
		newItemsDeleteCmd(rt),
		newItemsExportCmd(rt),
		newItemsImportCmd(rt),
	)
	return cmd
}

func newItemsListCmd(rt *app) *cobra.Command {
	var categoryID string
	cmd := &cobra.Command{
		Use:   "list --category ID",
		Short: "List the items of one category, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, closeDB, err := rt.openCatalog()
			if err != nil {
				return err
			}
			defer closeDB()

			_, items, err := cat.service.GetCategoryWithItems(cmd.Context(), categoryID)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tFAVORITE\tPRICE\tCREATED")
			for _, item := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					item.ID,
					orDash(item.Name),
					formatOptional(item.IsFavorite, strconv.FormatBool),
					formatOptional(item.Price, strconv.Itoa),
					item.CreatedAt.Local().Format(time.DateTime),
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&categoryID, "category", "", "category id")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newItemsAddCmd(rt *app) *cobra.Command {
	var (
		picturePath string
		categoryID  string
		name        string
		favorite    bool
		price       int
	)
	cmd := &cobra.Command{
		Use:   "add --picture FILE --category ID",
		Short: "Add an item from a picture file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			picture, err := os.ReadFile(picturePath)
			if err != nil {
				return fmt.Errorf("failed to read picture: %w", err)
			}

			in := service.CreateItemInput{CategoryID: categoryID, PictureData: picture}
			if cmd.Flags().Changed("name") {
				in.Name = &name
			}
			if cmd.Flags().Changed("favorite") {
				in.IsFavorite = &favorite
			}
			if cmd.Flags().Changed("price") {
				in.Price = &price
			}

			cat, closeDB, err := rt.openCatalog()
			if err != nil {
				return err
			}
			defer closeDB()

			item, err := cat.service.CreateItem(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), item.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&picturePath, "picture", "", "path to the item's picture")
	cmd.Flags().StringVar(&categoryID, "category", "", "category id")
	cmd.Flags().StringVar(&name, "name", "", "item name")
	cmd.Flags().BoolVar(&favorite, "favorite", false, "mark the item as a favorite")
	cmd.Flags().IntVar(&price, "price", 0, "price in minor currency units")
	_ = cmd.MarkFlagRequired("picture")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newItemsDeleteCmd(rt *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closeDB, err := rt.openCatalog()
			if err != nil {
				return err
			}
			defer closeDB()

			return cat.service.DeleteItem(cmd.Context(), args[0])
		},
	}
}

// newItemsExportCmd writes every picture of a category to a directory, one
// file per item named after the item id.
func newItemsExportCmd(rt *app) *cobra.Command {
	var categoryID, outDir string
	cmd := &cobra.Command{
		Use:   "export --category ID --out DIR",
		Short: "Write a category's item pictures to a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, closeDB, err := rt.openCatalog()
			if err != nil {
				return err
			}
			defer closeDB()

			_, items, err := cat.service.GetCategoryWithItems(cmd.Context(), categoryID)
			if err != nil {
				return err
			}

			dir, err := pictures.NewDir(outDir, rt.logger)
			if err != nil {
				return err
			}
			for _, item := range items {
				key, err := dir.Write(cmd.Context(), item.ID, item.PictureData)
				if err != nil {
					return fmt.Errorf("failed to export item %s: %w", item.ID, err)
				}
				rt.logger.Debug("exported picture", zap.String("item_id", item.ID), zap.String("file", key))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d pictures\n", len(items))
			return nil
		},
	}
	cmd.Flags().StringVar(&categoryID, "category", "", "category id")
	cmd.Flags().StringVar(&outDir, "out", "", "directory to write pictures to")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// newItemsImportCmd creates one item per picture file in a directory. The
// file name without its extension becomes the item name. Files are imported
// in name order and the first failure stops the import.
func newItemsImportCmd(rt *app) *cobra.Command {
	var categoryID, srcDir string
	cmd := &cobra.Command{
		Use:   "import --category ID --dir DIR",
		Short: "Create items from the picture files in a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(srcDir); err != nil {
				return fmt.Errorf("failed to open picture directory: %w", err)
			}
			dir, err := pictures.NewDir(srcDir, rt.logger)
			if err != nil {
				return err
			}
			keys, err := dir.List(cmd.Context())
			if err != nil {
				return err
			}

			cat, closeDB, err := rt.openCatalog()
			if err != nil {
				return err
			}
			defer closeDB()

			if _, err := cat.service.GetCategory(cmd.Context(), categoryID); err != nil {
				return err
			}

			for _, key := range keys {
				data, err := dir.Read(cmd.Context(), key)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", key, err)
				}
				name := strings.TrimSuffix(key, filepath.Ext(key))
				item, err := cat.service.CreateItem(cmd.Context(), service.CreateItemInput{
					CategoryID:  categoryID,
					PictureData: data,
					Name:        &name,
				})
				if err != nil {
					return fmt.Errorf("failed to import %s: %w", key, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", item.ID, key)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&categoryID, "category", "", "category id")
	cmd.Flags().StringVar(&srcDir, "dir", "", "directory of picture files")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func formatOptional[T any](v *T, format func(T) string) string {
	if v == nil {
		return "-"
	}
	return format(*v)
}
