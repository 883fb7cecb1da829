package name

import (
	"fmt"
	"github.com/ValentinKolb/moniker/cmd/util"
	"github.com/ValentinKolb/moniker/lib/moniker"
	"github.com/spf13/cobra"
)

var (
	createCmd = &cobra.Command{
		Use:   "create [category] [tier] [name]",
		Short: "Registers a name and stores a new identifier for it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := util.NewPrinter()
			return withTier(p, args[1], func(database *moniker.DB, tier moniker.Tier) error {
				if err := database.CreateName(args[0], tier, args[2]); err != nil {
					return p.Fail(err)
				}
				return p.Success("created %s in %s/%s", args[2], args[0], tier)
			})
		},
	}
	deleteCmd = &cobra.Command{
		Use:     "delete [category] [tier] [name]",
		Aliases: []string{"del"},
		Short:   "Deletes a name, the name must exist",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := util.NewPrinter()
			return withTier(p, args[1], func(database *moniker.DB, tier moniker.Tier) error {
				if err := database.DeleteName(args[0], tier, args[2]); err != nil {
					return p.Fail(err)
				}
				return p.Success("deleted %s from %s/%s", args[2], args[0], tier)
			})
		},
	}
	listCmd = &cobra.Command{
		Use:   "list [category] [tier]",
		Short: "Lists all names of a tier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := util.NewPrinter()
			return withTier(p, args[1], func(database *moniker.DB, tier moniker.Tier) error {
				names, err := database.ListNames(args[0], tier)
				if err != nil {
					return p.Fail(err)
				}
				return p.Data(names, names)
			})
		},
	}
	existsCmd = &cobra.Command{
		Use:   "exists [category] [tier] [name]",
		Short: "Checks whether a name is registered",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := util.NewPrinter()
			return withTier(p, args[1], func(database *moniker.DB, tier moniker.Tier) error {
				exists, err := database.NameExists(args[0], tier, args[2])
				if err != nil {
					return p.Fail(err)
				}
				return p.Data(map[string]bool{"exists": exists}, []string{fmt.Sprintf("name=%s, exists=%v", args[2], exists)})
			})
		},
	}
)
