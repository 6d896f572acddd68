package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/af-corp/content-assistant/internal/prompt"
	"github.com/af-corp/content-assistant/internal/types"
	"github.com/af-corp/content-assistant/internal/validate"
)

// renderPrompt returns the system instruction and user prompt for a request
// body of the given kind.
func renderPrompt(kind string, body []byte) (string, string, error) {
	switch kind {
	case "image":
		return "", "", errors.New("image prompts are sent to the provider verbatim")
	case string(types.KindNewsletter):
		req, err := validate.ValidateNewsletter(body)
		if err != nil {
			return "", "", err
		}
		return prompt.SystemInstruction(types.KindNewsletter), prompt.BuildNewsletter(req), nil
	default:
		req, err := validate.ValidateContent(body)
		if err != nil {
			return "", "", err
		}
		return prompt.SystemInstruction(req.Kind), prompt.Build(req.Kind, req), nil
	}
}

func newPromptCmd(a *app) *cobra.Command {
	var flags requestFlags
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompt that would be sent upstream, without calling it",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := flags.body()
			if err != nil {
				return err
			}
			system, user, err := renderPrompt(flags.kind, body)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "--- system ---\n%s\n--- user ---\n%s\n", system, user)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
