package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstore/internal/errors"
)

// Codes only the command line produces.
func init() {
	errors.Register("V042", errors.ErrorTemplate{
		Category: errors.CategoryCLI,
		Message:  "Unknown error format",
		Detail:   "--error-format takes text, compact or json.",
		DocURL:   "https://vango.dev/docs/vstore/errors/V042",
	})
}

func checkErrorFormat(format string) error {
	switch format {
	case errors.OutputText, errors.OutputCompact, errors.OutputJSON:
		return nil
	}
	return errors.New("V042").WithSuggestion(fmt.Sprintf("Replace %q with text, compact or json", format))
}

func errorsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "errors [code]",
		Short: "List error codes or explain one",
		Long: `Without an argument, list every error code vstore can report.
With a code, print its message, explanation and documentation link.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, code := range errors.GetAllCodes() {
					t, _ := errors.GetTemplate(code)
					fmt.Fprintf(a.out, "%s  %-8s %s\n", code, t.Category, t.Message)
				}
				return nil
			}

			code := args[0]
			t, ok := errors.GetTemplate(code)
			if !ok {
				return errors.Newf(errors.CategoryCLI, "unknown error code %q", code).
					WithSuggestion("Run 'vstore errors' to list every code")
			}
			fmt.Fprintf(a.out, "%s: %s\n", code, t.Message)
			if t.Detail != "" {
				fmt.Fprintf(a.out, "\n  %s\n", t.Detail)
			}
			if t.DocURL != "" {
				fmt.Fprintf(a.out, "\n  Docs: %s\n", t.DocURL)
			}
			return nil
		},
	}
}
