package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"` // "live" or "mock"
	Dotenv string `mapstructure:"dotenv"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Providers struct {
		Geoapify struct {
			GeocodeURL string        `mapstructure:"geocodeURL"`
			PlacesURL  string        `mapstructure:"placesURL"`
			Timeout    time.Duration `mapstructure:"timeout"`
		} `mapstructure:"geoapify"`
		Weather struct {
			ForecastURL string        `mapstructure:"forecastURL"`
			Timeout     time.Duration `mapstructure:"timeout"`
		} `mapstructure:"weather"`
		Routing struct {
			DirectionsURL string        `mapstructure:"directionsURL"`
			Timeout       time.Duration `mapstructure:"timeout"`
		} `mapstructure:"routing"`
		OpenAI struct {
			URL     string        `mapstructure:"url"`
			Model   string        `mapstructure:"model"`
			Timeout time.Duration `mapstructure:"timeout"`
		} `mapstructure:"openai"`
		Gemini struct {
			Model string `mapstructure:"model"`
		} `mapstructure:"gemini"`
	} `mapstructure:"providers"`
	Cache struct {
		GeocodeTTL time.Duration `mapstructure:"geocodeTTL"`
		PlacesTTL  time.Duration `mapstructure:"placesTTL"`
		WeatherTTL time.Duration `mapstructure:"weatherTTL"`
		RoutingTTL time.Duration `mapstructure:"routingTTL"`
		ScoringTTL time.Duration `mapstructure:"scoringTTL"`
		Cleanup    time.Duration `mapstructure:"cleanup"`
	} `mapstructure:"cache"`
	Retry struct {
		MaxAttempts int           `mapstructure:"maxAttempts"`
		BaseDelay   time.Duration `mapstructure:"baseDelay"`
		Multiplier  float64       `mapstructure:"multiplier"`
	} `mapstructure:"retry"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	return config, nil
}
