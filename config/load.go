package config

import (
	"fmt"

	"moonlend/core"

	"github.com/asaskevich/govalidator"
	configUtil "github.com/fox-one/pkg/config"
)

// Load load config file
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("MOONLEND")
	if err := configUtil.LoadYaml(configFile, config); err != nil {
		return err
	}

	defaults(config)
	return validate(config)
}

func validate(cfg *core.Config) error {
	endpoints := map[string]string{
		"chain.endpoint":             cfg.Chain.Endpoint,
		"aggregator.end_point":       cfg.Aggregator.EndPoint,
		"aggregator.price_end_point": cfg.Aggregator.PriceEndPoint,
	}
	for name, endpoint := range endpoints {
		if endpoint == "" {
			continue
		}
		if !govalidator.IsURL(endpoint) {
			return fmt.Errorf("config: %s is not a valid url: %q", name, endpoint)
		}
	}
	return nil
}
