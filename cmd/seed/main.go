package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/codesheets-backend/internal/app"
	"github.com/yungbote/codesheets-backend/internal/catalogseed"
)

var seedFile string

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import problem sheets from a YAML catalog",
	Long: `seed reads sheets, problems, hints and solutions from a YAML file and
creates every sheet whose name is not already in the catalog.`,
	SilenceUsage: true,
	RunE:         runApply,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a catalog file without connecting to the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadFile(seedFile)
		if err != nil {
			return err
		}
		if err := catalogseed.Validate(doc); err != nil {
			return fmt.Errorf("%s is invalid:\n%w", seedFile, err)
		}
		problems := 0
		for _, sh := range doc.Sheets {
			problems += len(sh.Problems)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d sheets, %d problems\n", seedFile, len(doc.Sheets), problems)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&seedFile, "file", "f", "seed/catalog.yaml", "YAML catalog to import")
	rootCmd.AddCommand(validateCmd)
}

func loadFile(path string) (*catalogseed.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return catalogseed.Parse(f)
}

func runApply(cmd *cobra.Command, args []string) error {
	doc, err := loadFile(seedFile)
	if err != nil {
		return err
	}
	if err := catalogseed.Validate(doc); err != nil {
		return fmt.Errorf("%s is invalid:\n%w", seedFile, err)
	}

	a, err := app.New()
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	res, err := catalogseed.NewSeeder(a.Log, a.Services.Catalog).Seed(cmd.Context(), doc)
	if err != nil {
		a.Log.Error("Seed failed", "error", err, "sheets_created", res.SheetsCreated, "problems_created", res.ProblemsCreated)
		return err
	}
	a.Log.Info("Seed complete",
		"file", seedFile,
		"sheets_created", res.SheetsCreated,
		"sheets_skipped", res.SheetsSkipped,
		"problems_created", res.ProblemsCreated,
	)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
