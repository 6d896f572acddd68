package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/af-corp/content-assistant/internal/api"
	"github.com/af-corp/content-assistant/internal/cache"
	"github.com/af-corp/content-assistant/internal/filter"
	"github.com/af-corp/content-assistant/internal/generate"
	"github.com/af-corp/content-assistant/internal/types"
	"github.com/af-corp/content-assistant/internal/upstream"
	"github.com/af-corp/content-assistant/internal/validate"
)

// requestFlags are the content fields shared by generate and prompt.
type requestFlags struct {
	kind       string
	topic      string
	audience   string
	style      string
	guidelines string
	tone       string
	length     string
	image      string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "kind", "post", "post, thread, poll, newsletter or image")
	cmd.Flags().StringVar(&f.topic, "topic", "", "topic to write about")
	cmd.Flags().StringVar(&f.audience, "audience", "", "target audience")
	cmd.Flags().StringVar(&f.style, "style", "", "writing style")
	cmd.Flags().StringVar(&f.guidelines, "guidelines", "", "extra guidelines")
	cmd.Flags().StringVar(&f.tone, "tone", "", "newsletter tone")
	cmd.Flags().StringVar(&f.length, "length", "", "newsletter length: short, medium or long")
	cmd.Flags().StringVar(&f.image, "prompt", "", "image prompt (kind=image)")
}

// body renders the flags as the JSON body the HTTP API would receive, so the
// CLI goes through the same validation and defaults.
func (f *requestFlags) body() ([]byte, error) {
	fields := map[string]string{}
	set := func(name, v string) {
		if v != "" {
			fields[name] = v
		}
	}
	switch f.kind {
	case "image":
		set("prompt", f.image)
	case string(types.KindNewsletter):
		set("topic", f.topic)
		set("audience", f.audience)
		set("style", f.style)
		set("tone", f.tone)
		set("length", f.length)
		set("guidelines", f.guidelines)
	default:
		set("kind", f.kind)
		set("topic", f.topic)
		set("audience", f.audience)
		set("style", f.style)
		set("guidelines", f.guidelines)
	}
	return json.Marshal(fields)
}

func newGenerateCmd(a *app) *cobra.Command {
	var flags requestFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate content once and print the JSON result",
		Example: `  assistant generate --kind post --topic "remote work"
  assistant generate --kind image --prompt "a lighthouse at dawn"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := flags.body()
			if err != nil {
				return err
			}

			cfg := a.loader.Config()
			provider, err := upstream.BuildFromConfig(cfg.Upstream, nil)
			if err != nil {
				return err
			}
			gen := generate.New(cache.Noop{}, cfg.Cache.TTL, provider, cfg.Upstream, nil, a.logger)
			chain, _, err := newFilterChain(a.loader)
			if err != nil {
				return err
			}

			result, err := runGenerate(cmd.Context(), gen, chain, flags.kind, body)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	flags.register(cmd)
	return cmd
}

// runGenerate validates body, screens it through chain and only then calls
// the generator, in the same order as the HTTP handlers.
func runGenerate(ctx context.Context, gen api.Generator, chain *filter.Chain, kind string, body []byte) (types.GeneratedResult, error) {
	switch kind {
	case "image":
		req, err := validate.ValidateImage(body)
		if err != nil {
			return types.GeneratedResult{}, err
		}
		if err := screen(ctx, chain, filter.ImageInput(api.EndpointImage, req)); err != nil {
			return types.GeneratedResult{}, err
		}
		return gen.GenerateImage(ctx, req.Prompt)
	case string(types.KindNewsletter):
		req, err := validate.ValidateNewsletter(body)
		if err != nil {
			return types.GeneratedResult{}, err
		}
		if err := screen(ctx, chain, filter.NewsletterInput(api.EndpointNewsletter, req)); err != nil {
			return types.GeneratedResult{}, err
		}
		return gen.GenerateNewsletter(ctx, req)
	default:
		req, err := validate.ValidateContent(body)
		if err != nil {
			return types.GeneratedResult{}, err
		}
		endpoint := api.EndpointGenerate
		if req.Kind == types.KindPoll {
			endpoint = api.EndpointPoll
		}
		if err := screen(ctx, chain, filter.ContentInput(endpoint, req)); err != nil {
			return types.GeneratedResult{}, err
		}
		return gen.Generate(ctx, req)
	}
}

func screen(ctx context.Context, chain *filter.Chain, in *filter.Input) error {
	if chain == nil {
		return nil
	}
	if _, blocked := chain.Run(ctx, in); blocked != nil {
		return fmt.Errorf("request blocked by %s filter: %s", blocked.FilterName, blocked.Message)
	}
	return nil
}
