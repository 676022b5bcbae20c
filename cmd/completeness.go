package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/youcodecowboy/disco-grid-sub000/internal/completeness"
	"github.com/youcodecowboy/disco-grid-sub000/internal/contract"
	"github.com/youcodecowboy/disco-grid-sub000/internal/flow"
	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
	"github.com/youcodecowboy/disco-grid-sub000/internal/registry"
)

var (
	completenessSkip      []string
	completenessQuestions string
)

type completenessOutput struct {
	Report       completeness.Report        `json:"report"`
	GapQuestions []model.GapQuestion        `json:"gapQuestions"`
	Validation   []contract.ValidationError `json:"validation"`
	Skip         map[string]bool            `json:"skip,omitempty"`
	Questions    []flow.Step                `json:"questions,omitempty"`
}

var completenessCmd = &cobra.Command{
	Use:   "completeness <contract.json|->",
	Short: "Audit a contract and list the gap-filling questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("completeness"); err != nil {
			return err
		}
		cfg.LLM.Provider = "none"
		env, err := initCore(cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		c, err := readContract(args[0], os.Stdin)
		if err != nil {
			return err
		}
		out := auditContract(env, c)

		if len(completenessSkip) > 0 {
			out.Skip = make(map[string]bool, len(completenessSkip))
			for _, p := range completenessSkip {
				out.Skip[p] = env.Completeness.ShouldSkipQuestion(c, p)
			}
		}
		if completenessQuestions != "" {
			qs, err := registry.LoadQuestionsFromFile(completenessQuestions)
			if err != nil {
				return err
			}
			out.Questions = flow.Trace(qs, c)
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

// auditContract is the completeness view shared by the CLI and the API.
func auditContract(env *coreEnv, c model.Contract) completenessOutput {
	report := env.Completeness.Analyze(c)
	validation := contract.ValidateWith(c, env.Registry)
	if validation == nil {
		validation = []contract.ValidationError{}
	}
	return completenessOutput{
		Report:       report,
		GapQuestions: completeness.GenerateGapQuestions(report.MissingRequired),
		Validation:   validation,
	}
}

func init() {
	completenessCmd.Flags().StringSliceVar(&completenessSkip, "skip", nil, "question mapsTo paths to test for skipping (e.g. company.*)")
	completenessCmd.Flags().StringVar(&completenessQuestions, "questions", "", "questions JSON/YAML file to trace visibility for")
	rootCmd.AddCommand(completenessCmd)
}
