package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/ai-future-predictor/internal/profile"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that an answers file completes every wizard step",
	RunE:  runValidate,
}

var validateMaxPhotoMB int64

func init() {
	validateCmd.Flags().String("answers", "", "Path to answers YAML file")
	validateCmd.Flags().Int64Var(&validateMaxPhotoMB, "max-photo-mb", 10, "Maximum photo size in MB")
	if err := validateCmd.MarkFlagRequired("answers"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("answers")
	a, data, ct, err := loadAnswers(path, validateMaxPhotoMB<<20)
	if err != nil {
		return err
	}
	s, err := drive(a, data, ct)
	if err != nil {
		return err
	}
	p := profile.Assemble(s.Data)
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %s, career %q, programming %d, logic %d, personality %s\n",
		p.Name, p.IdealCareer, p.ProgrammingSkills, p.LogicalThinking, p.PersonalityType)
	return nil
}
