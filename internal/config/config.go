package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

//go:embed mpesa_rules.json
var defaultRules []byte

// Config is the validated classification rule set.
type Config struct {
	Accounts       []string `mapstructure:"accounts"`
	DefaultAccount string   `mapstructure:"default_account"`
	Rules          []Rule   `mapstructure:"rules"`
}

// Rule maps narratives to an account. Rules are evaluated in declared
// order; the first match wins.
type Rule struct {
	Account   string   `mapstructure:"account"`
	Keywords  []string `mapstructure:"keywords"`
	Exclude   []string `mapstructure:"exclude"`
	MatchType string   `mapstructure:"match_type"`
	Condition string   `mapstructure:"condition"`
}

// Load reads and validates the rule configuration. Validation is
// fail-closed: any schema problem aborts with a descriptive error before
// extraction or classification runs.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	for _, field := range []string{"accounts", "rules", "default_account"} {
		if !v.IsSet(field) {
			return nil, fmt.Errorf("missing required field in config: %s", field)
		}
	}
	if _, ok := v.Get("accounts").([]interface{}); !ok {
		return nil, fmt.Errorf("'accounts' must be a list")
	}
	rawRules, ok := v.Get("rules").([]interface{})
	if !ok {
		return nil, fmt.Errorf("'rules' must be a list")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config, rawRules); err != nil {
		return nil, err
	}
	return &config, nil
}

func validate(config *Config, rawRules []interface{}) error {
	accounts := make(map[string]bool, len(config.Accounts))
	for _, a := range config.Accounts {
		accounts[a] = true
	}

	if !accounts[config.DefaultAccount] {
		return fmt.Errorf("default_account '%s' is not in accounts list", config.DefaultAccount)
	}

	for i, raw := range rawRules {
		fields, ok := raw.(map[string]interface{})
		if !ok {
			return fmt.Errorf("rule %d must be a mapping", i)
		}
		if _, ok := ruleField(fields, "account"); !ok {
			return fmt.Errorf("rule %d is missing 'account' field", i)
		}
		if !accounts[config.Rules[i].Account] {
			return fmt.Errorf("rule %d uses account '%s' which is not in accounts list", i, config.Rules[i].Account)
		}
		keywords, ok := ruleField(fields, "keywords")
		if !ok {
			return fmt.Errorf("rule %d is missing 'keywords' field", i)
		}
		if _, ok := keywords.([]interface{}); !ok {
			return fmt.Errorf("rule %d keywords must be a list", i)
		}
		if mt, ok := ruleField(fields, "match_type"); ok {
			s, _ := mt.(string)
			if s != "any" && s != "all" {
				return fmt.Errorf("rule %d has invalid match_type '%v', must be 'any' or 'all'", i, mt)
			}
		}
	}
	return nil
}

// ruleField looks a key up case-insensitively; viper lower-cases
// top-level keys but leaves keys inside list elements as written.
func ruleField(fields map[string]interface{}, name string) (interface{}, bool) {
	for k, v := range fields {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// DefaultPath returns the per-user rule configuration path.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(dir, "mpesa-tools", "mpesa_rules.json"), nil
}

// EnsureDefault copies the embedded default rule set to path when no
// file exists there yet, creating parent directories as needed.
func EnsureDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config file %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, defaultRules, 0o644); err != nil {
		return fmt.Errorf("failed to write default config %s: %w", path, err)
	}
	return nil
}
