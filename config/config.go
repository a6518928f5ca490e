package config

import (
	"log"

	"github.com/spf13/viper"
	"github.com/stellar/go/network"
	"github.com/subosito/gotenv"
)

var config *viper.Viper

// Init loads the layered configuration: .env, config/default.yaml, then the
// network-specific overlay selected by the environment name.
func Init(env string) {
	gotenv.Load()

	var err error
	config = viper.New()
	config.SetConfigType("yaml")
	config.SetConfigName("default")
	config.AddConfigPath("config/")
	err = config.ReadInConfig()
	if err != nil {
		log.Fatal("error on parsing default configuration file")
	}

	// Map environment names to config files
	configName := env
	switch env {
	case "development":
		configName = "testnet"
	case "production":
		configName = "mainnet"
	// Keep other environments as-is (e.g., "test")
	}

	envConfig := viper.New()
	envConfig.SetConfigType("yaml")
	envConfig.AddConfigPath("config/")
	envConfig.SetConfigName(configName)
	err = envConfig.ReadInConfig()
	if err != nil {
		log.Fatalf("error on parsing %s configuration file: %v", configName, err)
	}

	config.MergeConfigMap(envConfig.AllSettings())
	config.AutomaticEnv()
}

func GetConfig() *viper.Viper {
	return config
}

// NetworkPassphrase maps the configured network name to its passphrase.
func NetworkPassphrase() string {
	switch config.GetString("network") {
	case "mainnet", "public":
		return network.PublicNetworkPassphrase
	default:
		return network.TestNetworkPassphrase
	}
}
