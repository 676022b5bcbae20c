package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	promptStrategy string
	promptList     bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt [context]",
	Short: "Print the extraction system prompt for a context",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("prompt"); err != nil {
			return err
		}
		cfg.LLM.Provider = "none"
		env, err := initCore(cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		out := cmd.OutOrStdout()
		if promptList {
			for _, name := range env.Registry.ContextNames() {
				fmt.Fprintln(out, name)
			}
			return nil
		}

		contextName := env.DefaultContext
		if len(args) == 1 {
			contextName = args[0]
		}
		strategy := promptStrategy
		if strategy == "" {
			strategy = env.DefaultStrategy
		}
		p, err := env.Prompts.Build(contextName, strategy)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, p)
		return nil
	},
}

func init() {
	promptCmd.Flags().StringVar(&promptStrategy, "strategy", "", "prompt strategy (default from config)")
	promptCmd.Flags().BoolVar(&promptList, "list", false, "list known contexts")
	rootCmd.AddCommand(promptCmd)
}
