package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	workflowIndustry string
	workflowFile     string
)

var workflowCmd = &cobra.Command{
	Use:   "workflow [description...]",
	Short: "Draft workflow stages and limbo zones from a business description",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("extract"); err != nil {
			return err
		}
		env, err := initCore(cfg)
		if err != nil {
			return err
		}
		defer env.Close()
		if env.Gateway == nil {
			return eris.New("workflow generation needs an llm provider")
		}

		text, err := readText(args, workflowFile, os.Stdin)
		if err != nil {
			return err
		}
		wf, err := env.Gateway.GenerateWorkflow(cmd.Context(), text, workflowIndustry)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), wf)
	},
}

func init() {
	workflowCmd.Flags().StringVar(&workflowIndustry, "industry", "", "industry hint for the prompt")
	workflowCmd.Flags().StringVarP(&workflowFile, "file", "f", "", "read the description from file (- for stdin)")
	rootCmd.AddCommand(workflowCmd)
}
