package cooking

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kipparis/cooking-notebook/internal/model"
	"github.com/Kipparis/cooking-notebook/internal/service"
)

var boundCmd = &cobra.Command{
	Use:   "bound",
	Short: "Manage recommended intake bounds",
}

var (
	boundAgeFrom int
	boundAgeTo   int
	boundSex     string
	boundAI      float64
	boundUL      float64
	boundUnit    string
	boundBirth   string
)

var boundAddCmd = &cobra.Command{
	Use:   "add <nutrient>",
	Short: "Record adequate intake and upper limit for an age interval [from, to)",
	Example: `  cooking bound add Calcium --from 19 --to 51 --sex female --ai 1000 --ul 2500 --unit mg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.BoundInput{
			Nutrient:       args[0],
			AgeLower:       boundAgeFrom,
			AgeUpper:       boundAgeTo,
			Sex:            model.Sex(boundSex),
			AdequateIntake: optionalFloat(cmd, "ai", boundAI),
			UpperLimit:     optionalFloat(cmd, "ul", boundUL),
			Unit:           boundUnit,
		}
		return withDB(func(sqldb *sql.DB) error {
			id, err := service.AddBound(sqldb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created bound %d\n", id)
			return nil
		})
	},
}

var boundListCmd = &cobra.Command{
	Use:   "list [nutrient]",
	Short: "List bounds",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nutrient := ""
		if len(args) == 1 {
			nutrient = args[0]
		}
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListBounds(sqldb, nutrient)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNUTRIENT\tAGE\tSEX\tAI\tUL")
			for _, b := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t[%d, %d)\t%s\t%s\t%s\n", b.ID, b.Nutrient, b.AgeLower, b.AgeUpper, b.Sex, boundValue(b.AdequateIntake, b.Unit), boundValue(b.UpperLimit, b.Unit))
			}
			return nil
		})
	},
}

var boundShowCmd = &cobra.Command{
	Use:   "show <nutrient>",
	Short: "Show the bound that applies to the stored profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			profile, err := boundProfile(cmd, sqldb)
			if err != nil {
				return err
			}
			b, err := service.BoundsFor(service.NewStore(sqldb), profile, args[0], time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Nutrient: %s\nAge: [%d, %d)\nSex: %s\nAdequate intake: %s\nUpper limit: %s\n",
				b.Nutrient, b.AgeLower, b.AgeUpper, b.Sex, boundValue(b.AdequateIntake, b.Unit), boundValue(b.UpperLimit, b.Unit))
			return nil
		})
	},
}

// boundProfile uses --birth-date/--sex when given, the stored profile
// otherwise.
func boundProfile(cmd *cobra.Command, sqldb *sql.DB) (model.UserProfile, error) {
	if !cmd.Flags().Changed("birth-date") && !cmd.Flags().Changed("sex") {
		return service.GetProfile(sqldb)
	}
	birth, err := parseDate("--birth-date", boundBirth)
	if err != nil {
		return model.UserProfile{}, err
	}
	sex, err := service.ParseSex(boundSex)
	if err != nil {
		return model.UserProfile{}, err
	}
	return model.UserProfile{BirthDate: birth, Sex: sex}, nil
}

func boundValue(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v) + " " + unit
}

func init() {
	rootCmd.AddCommand(boundCmd)
	boundCmd.AddCommand(boundAddCmd, boundListCmd, boundShowCmd)

	boundAddCmd.Flags().IntVar(&boundAgeFrom, "from", 0, "Lower age, inclusive")
	boundAddCmd.Flags().IntVar(&boundAgeTo, "to", 0, "Upper age, exclusive")
	boundAddCmd.Flags().StringVar(&boundSex, "sex", "", "Sex: male or female")
	boundAddCmd.Flags().Float64Var(&boundAI, "ai", 0, "Adequate intake")
	boundAddCmd.Flags().Float64Var(&boundUL, "ul", 0, "Tolerable upper limit")
	boundAddCmd.Flags().StringVar(&boundUnit, "unit", "", "Unit of --ai and --ul")
	_ = boundAddCmd.MarkFlagRequired("to")
	_ = boundAddCmd.MarkFlagRequired("sex")
	_ = boundAddCmd.MarkFlagRequired("unit")

	boundShowCmd.Flags().StringVar(&boundBirth, "birth-date", "", "Birth date instead of the stored profile (YYYY-MM-DD)")
	boundShowCmd.Flags().StringVar(&boundSex, "sex", "", "Sex instead of the stored profile")
}
