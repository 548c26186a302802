package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "BOOKSTORE_CONFIG_FILE"

type cache struct {
	Addr              string        `mapstructure:"addr"`
	CartTTL           time.Duration `mapstructure:"cart_ttl"`
	PresenceMarkerTTL time.Duration `mapstructure:"presence_marker_ttl"`
	PresenceSweep     time.Duration `mapstructure:"presence_sweep"`
}

type catalog struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	BreakerThreshold int           `mapstructure:"breaker_threshold"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
}

type orders struct {
	BreakerThreshold int           `mapstructure:"breaker_threshold"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
}

type broker struct {
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	OrderPlacedTopic   string   `mapstructure:"order_placed_topic"`
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	SQLDB          string     `mapstructure:"sql_db"`
	Cache          cache      `mapstructure:"cache"`
	Catalog        catalog    `mapstructure:"catalog"`
	Orders         orders     `mapstructure:"orders"`
	Broker         broker     `mapstructure:"broker"`
}

func Load() Config {
	viper.SetConfigFile(getConfigFilepath())

	err := viper.ReadInConfig()
	if err != nil {
		die(err)
	}

	var cfg Config
	err = viper.UnmarshalExact(&cfg)
	if err != nil {
		die(err)
	}

	return cfg
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	SQLDB=%q

	CacheConfig:
	Addr=%q
	CartTTL=%q
	PresenceMarkerTTL=%q
	PresenceSweep=%q

	CatalogConfig:
	BaseURL=%q
	Timeout=%q
	BreakerThreshold=%d
	BreakerCooldown=%q

	OrdersConfig:
	BreakerThreshold=%d
	BreakerCooldown=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	OrderPlacedTopic=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.SQLDB,
		c.Cache.Addr,
		c.Cache.CartTTL,
		c.Cache.PresenceMarkerTTL,
		c.Cache.PresenceSweep,
		c.Catalog.BaseURL,
		c.Catalog.Timeout,
		c.Catalog.BreakerThreshold,
		c.Catalog.BreakerCooldown,
		c.Orders.BreakerThreshold,
		c.Orders.BreakerCooldown,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.OrderPlacedTopic,
	)
}
