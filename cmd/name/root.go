package name

import (
	"github.com/ValentinKolb/moniker/cmd/util"
	"github.com/ValentinKolb/moniker/lib/moniker"
	"github.com/spf13/cobra"
)

var (
	// NameCommands represents the name command group
	NameCommands = &cobra.Command{
		Use:   "name",
		Short: "Create, delete and list the names of a category tier",
		Long: `Create, delete and list the names of a category tier.
The tier is one of common, uncommon or rare.`,
	}
)

func init() {
	NameCommands.AddCommand(createCmd)
	NameCommands.AddCommand(deleteCmd)
	NameCommands.AddCommand(listCmd)
	NameCommands.AddCommand(existsCmd)
}

// withTier opens the database, parses the tier argument and runs fn.
// All failures are rendered by the printer.
func withTier(p *util.Printer, tierArg string, fn func(database *moniker.DB, tier moniker.Tier) error) error {
	tier, err := moniker.ParseTier(tierArg)
	if err != nil {
		return p.Fail(err)
	}

	database, err := util.OpenDB()
	if err != nil {
		return p.Fail(err)
	}
	defer database.Close()

	return fn(database, tier)
}
