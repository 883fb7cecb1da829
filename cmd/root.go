package cmd

import (
	"fmt"
	"github.com/ValentinKolb/moniker/cmd/category"
	"github.com/ValentinKolb/moniker/cmd/name"
	"github.com/ValentinKolb/moniker/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "moniker",
		Short: "registry of names by category and commonality",
		Long: fmt.Sprintf(`moniker (v%s)

A registry of names grouped by category (e.g. a language or nationality)
and commonality tier (common, uncommon, rare). Every name is stored with a
unique identifier in a local or remote key-value store.

The configuration can be set via command line flags or environment variables.
The format of the environment variables is MONIKER_<flag> (e.g. MONIKER_BACKEND=redis)`, Version),
		PersistentPreRunE: util.Setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of moniker",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("moniker v%s\n", Version)
		},
	}

	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Print the configuration and information about the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := util.NewPrinter()

			database, err := util.OpenDB()
			if err != nil {
				return p.Fail(err)
			}
			defer database.Close()

			info, err := database.DBInfo()
			if err != nil {
				return p.Fail(err)
			}
			categories, err := database.Categories()
			if err != nil {
				return p.Fail(err)
			}

			if p.Format != "text" {
				return p.Data(map[string]any{
					"backend":    info.DbType,
					"sizeBytes":  info.SizeBytes,
					"features":   info.SupportedFeatures,
					"metadata":   info.Metadata,
					"categories": categories,
				}, nil)
			}

			fmt.Print(util.Config().String())
			fmt.Printf("\nDATABASE\n")
			fmt.Printf("  %-22s: %s\n", "Type", info.DbType)
			fmt.Printf("  %-22s: %d\n", "Size (bytes)", info.SizeBytes)
			fmt.Printf("  %-22s: %v\n", "Features", info.SupportedFeatures)
			if info.Metadata != nil {
				fmt.Printf("  %-22s: %v\n", "Metadata", info.Metadata)
			}
			fmt.Printf("  %-22s: %d\n", "Categories", len(categories))

			if withMetrics, _ := cmd.Flags().GetBool("metrics"); withMetrics {
				fmt.Printf("\nMETRICS\n")
				database.WriteMetrics(os.Stdout)
			}
			return nil
		},
	}

	backupCmd = &cobra.Command{
		Use:   "backup [file]",
		Short: "Write a backup of the database to a file",
		Long:  `Write a backup of the database to a file. Supported by the bolt and maple backends. A bolt backup is a valid database file itself, a maple backup can be used as maple snapshot.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := util.NewPrinter()

			database, err := util.OpenDB()
			if err != nil {
				return p.Fail(err)
			}
			defer database.Close()

			f, err := os.Create(args[0])
			if err != nil {
				return p.Fail(err)
			}
			defer f.Close()

			if err := database.Backup(f); err != nil {
				return p.Fail(err)
			}
			if err := f.Sync(); err != nil {
				return p.Fail(err)
			}
			return p.Success("backup written to %s", args[0])
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(category.CategoryCommands)
	RootCmd.AddCommand(name.NameCommands)
	RootCmd.AddCommand(infoCmd)
	RootCmd.AddCommand(backupCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupStorageFlags(RootCmd)
	infoCmd.Flags().Bool("metrics", false, util.WrapString("Also print the metrics of the database in prometheus format"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
