package cooking

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kipparis/cooking-notebook/internal/model"
	"github.com/Kipparis/cooking-notebook/internal/service"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the profile used for recommended intake",
}

var (
	profileBirthDate string
	profileSex       string
)

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set birth date and sex",
	RunE: func(cmd *cobra.Command, args []string) error {
		birth, err := parseDate("--birth-date", profileBirthDate)
		if err != nil {
			return err
		}
		sex, err := service.ParseSex(profileSex)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetProfile(sqldb, model.UserProfile{BirthDate: birth, Sex: sex}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Updated profile")
			return nil
		})
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.GetProfile(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Birth date: %s\nAge: %d\nSex: %s\n", p.BirthDate.Format("2006-01-02"), p.Age(time.Now()), p.Sex)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileSetCmd, profileShowCmd)
	profileSetCmd.Flags().StringVar(&profileBirthDate, "birth-date", "", "Birth date (YYYY-MM-DD)")
	profileSetCmd.Flags().StringVar(&profileSex, "sex", "", "Sex: male or female")
	_ = profileSetCmd.MarkFlagRequired("birth-date")
	_ = profileSetCmd.MarkFlagRequired("sex")
}
