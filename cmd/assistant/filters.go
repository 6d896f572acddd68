package main

import (
	"fmt"

	"github.com/af-corp/content-assistant/internal/config"
	"github.com/af-corp/content-assistant/internal/filter"
	"github.com/af-corp/content-assistant/internal/filter/injection"
	"github.com/af-corp/content-assistant/internal/filter/policy"
	"github.com/af-corp/content-assistant/internal/filter/secrets"
)

// newFilterChain builds the secrets, injection and policy chain that screens
// every request. The policy bundle is loaded up front when enabled.
func newFilterChain(loader *config.Loader) (*filter.Chain, *policy.Evaluator, error) {
	policyEval := policy.NewEvaluator(func() config.PolicyFilterConfig {
		return loader.Config().Filter.Policy
	})
	if loader.Config().Filter.Policy.Enabled {
		if err := policyEval.Load(); err != nil {
			return nil, nil, fmt.Errorf("load content policy: %w", err)
		}
	}
	chain := filter.NewChain(
		secrets.NewScanner(func() config.SecretsFilterConfig { return loader.Config().Filter.Secrets }),
		injection.NewScanner(func() config.InjectionFilterConfig { return loader.Config().Filter.Injection }),
		policyEval,
	)
	return chain, policyEval, nil
}
