// Package classify maps transaction narratives to accounts using an
// ordered, first-match-wins rule set.
package classify

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/example/mpesa-tools/internal/config"
)

// compiledRule is a config rule with its condition parsed up front.
// A condition that fails to parse is kept; it behaves as a non-match at
// classification time, the same as a condition that fails to evaluate.
type compiledRule struct {
	account  string
	keywords []string
	exclude  []string
	matchAll bool
	cond     *condition
	condErr  error
	condSrc  string
}

// Engine classifies transactions against a validated rule set. It holds
// no state across calls; classification is deterministic for identical
// inputs.
type Engine struct {
	rules          []compiledRule
	defaultAccount string
	log            zerolog.Logger
}

// New compiles the configured rules into an engine.
func New(cfg *config.Config, log zerolog.Logger) *Engine {
	e := &Engine{defaultAccount: cfg.DefaultAccount, log: log}
	for _, r := range cfg.Rules {
		cr := compiledRule{
			account:  r.Account,
			keywords: r.Keywords,
			exclude:  r.Exclude,
			matchAll: r.MatchType == "all",
		}
		if r.Condition != "" {
			cr.condSrc = r.Condition
			cr.cond, cr.condErr = parseCondition(r.Condition)
		}
		e.rules = append(e.rules, cr)
	}
	return e
}

// Classify returns the account for a transaction narrative and amount.
// Rules are evaluated in declared order: exclude keywords first, then
// keyword matching per the rule's match type, then the optional amount
// condition. The first rule that fully matches wins; if none does, the
// default account is returned.
func (e *Engine) Classify(details string, amount decimal.Decimal) string {
	lower := strings.ToLower(details)

	for _, r := range e.rules {
		if !keywordsMatch(lower, r.keywords, r.exclude, r.matchAll) {
			continue
		}

		if r.condSrc != "" {
			ok, err := e.evaluateCondition(r, amount)
			if err != nil {
				// A broken condition and a false one are indistinguishable
				// to the result; the log line is the only place a config
				// typo shows up.
				e.log.Warn().Err(err).Str("account", r.account).Msg("rule condition failed; treating as non-match")
				continue
			}
			if !ok {
				continue
			}
		}
		return r.account
	}
	return e.defaultAccount
}

func (e *Engine) evaluateCondition(r compiledRule, amount decimal.Decimal) (bool, error) {
	if r.condErr != nil {
		return false, r.condErr
	}
	return r.cond.evaluate(amount)
}

// keywordsMatch reports whether the lower-cased narrative matches the
// keyword set. An empty keyword list never matches; exclude keywords
// suppress the rule unconditionally.
func keywordsMatch(detailsLower string, keywords, exclude []string, matchAll bool) bool {
	if len(keywords) == 0 {
		return false
	}
	for _, kw := range exclude {
		if strings.Contains(detailsLower, kw) {
			return false
		}
	}
	if matchAll {
		for _, kw := range keywords {
			if !strings.Contains(detailsLower, kw) {
				return false
			}
		}
		return true
	}
	for _, kw := range keywords {
		if strings.Contains(detailsLower, kw) {
			return true
		}
	}
	return false
}
