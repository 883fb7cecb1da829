package category

import (
	"github.com/ValentinKolb/moniker/cmd/util"
	"github.com/spf13/cobra"
)

var (
	// CategoryCommands represents the category command group
	CategoryCommands = &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Create and list categories",
	}

	createCmd = &cobra.Command{
		Use:   "create [category]",
		Short: "Creates a category with the tiers common, uncommon and rare",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := util.NewPrinter()

			database, err := util.OpenDB()
			if err != nil {
				return p.Fail(err)
			}
			defer database.Close()

			if _, err := database.CreateCategory(args[0]); err != nil {
				return p.Fail(err)
			}
			return p.Success("created category %s", args[0])
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists all categories in the order they were created",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := util.NewPrinter()

			database, err := util.OpenDB()
			if err != nil {
				return p.Fail(err)
			}
			defer database.Close()

			categories, err := database.Categories()
			if err != nil {
				return p.Fail(err)
			}
			if len(categories) == 0 && p.Format == "text" {
				p.Warning("no categories yet, create one with: moniker category create [category]")
			}
			return p.Data(categories, categories)
		},
	}
)

func init() {
	CategoryCommands.AddCommand(createCmd)
	CategoryCommands.AddCommand(listCmd)
}
