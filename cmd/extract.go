package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/youcodecowboy/disco-grid-sub000/internal/contract"
	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
	"github.com/youcodecowboy/disco-grid-sub000/internal/pipeline"
)

var (
	extractContext     string
	extractStrategy    string
	extractFile        string
	extractContract    string
	extractKeywordOnly bool
)

type extractOutput struct {
	*model.ExtractionResult
	Contract *model.Contract `json:"contract,omitempty"`
	Skipped  []contract.Skip `json:"skipped,omitempty"`
}

var extractCmd = &cobra.Command{
	Use:   "extract [text...]",
	Short: "Run hybrid entity extraction over free text",
	Long:  "Runs the keyword pass and, unless every match is explicit, the LLM pass for the given context. With --contract the entities are applied to the contract and the updated contract is printed too.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if extractKeywordOnly {
			cfg.LLM.Provider = "none"
		}
		if err := cfg.Validate("extract"); err != nil {
			return err
		}
		env, err := initCore(cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		text, err := readText(args, extractFile, os.Stdin)
		if err != nil {
			return err
		}
		req, err := env.request(pipeline.Request{Text: text, Context: extractContext, Strategy: extractStrategy})
		if err != nil {
			return err
		}

		out := extractOutput{ExtractionResult: env.Pipeline.Extract(cmd.Context(), req)}
		if extractContract != "" {
			c, err := readContract(extractContract, os.Stdin)
			if err != nil {
				return err
			}
			next, skipped, err := contract.ApplyEntities(c, out.Entities)
			if err != nil {
				return err
			}
			out.Contract = &next
			out.Skipped = skipped
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractContext, "context", "", "extraction context (default from config)")
	extractCmd.Flags().StringVar(&extractStrategy, "strategy", "", "prompt strategy: minimal, optimized, balanced, few_shot")
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "", "read text from file (- for stdin)")
	extractCmd.Flags().StringVar(&extractContract, "contract", "", "contract JSON file to apply the entities to")
	extractCmd.Flags().BoolVar(&extractKeywordOnly, "keyword-only", false, "skip the LLM pass")
	rootCmd.AddCommand(extractCmd)
}
