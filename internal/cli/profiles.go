package cli

import (
	"github.com/spf13/cobra"

	"github.com/piwi3910/BlockPack/internal/model"
	"github.com/piwi3910/BlockPack/internal/project"
)

// profilesCommand creates the "profiles" command and its subcommands.
func (c *CLI) profilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List, import and export GCode profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.loadConfig(); err != nil {
				return err
			}
			for _, p := range model.AllProfiles() {
				printInfo(c.Out, "%s", project.ProfileSummary(p))
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export <name> <file>",
		Short: "Write a profile to a JSON file for sharing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.loadConfig(); err != nil {
				return err
			}
			p := model.GetProfile(args[0])
			if p.Name != args[0] {
				return model.NewError(model.ErrCodeInvalidInput, "no profile named %q", args[0])
			}
			if err := project.ExportProfile(args[1], p); err != nil {
				return err
			}
			printSuccess(c.Out, "Exported %s", p.Name)
			printFile(c.Out, args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Add a profile from a JSON file to the custom profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.ImportProfile(args[0])
			if err != nil {
				return err
			}
			for _, b := range model.GCodeProfiles {
				if b.Name == p.Name {
					return model.NewError(model.ErrCodeInvalidConfig, "%q is a built-in profile", p.Name)
				}
			}

			path := project.DefaultProfilesPath()
			existing, err := project.LoadCustomProfiles(path)
			if err != nil {
				return err
			}
			replaced := false
			for i := range existing {
				if existing[i].Name == p.Name {
					existing[i] = p
					replaced = true
				}
			}
			if !replaced {
				existing = append(existing, p)
			}
			if err := project.SaveCustomProfiles(path, existing); err != nil {
				return err
			}
			verb := "Added"
			if replaced {
				verb = "Replaced"
			}
			printSuccess(c.Out, "%s profile %s", verb, p.Name)
			printDetail(c.Out, "%d custom profiles in %s", len(existing), path)
			return nil
		},
	})

	return cmd
}
