package util

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/lintang-b-s/navigatorx-ar/pkg"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// OverlayConfig is the typed view over the viper keys used by the overlay server and the replay tool.
type OverlayConfig struct {
	APIPort                   int           `mapstructure:"API_PORT" validate:"min=1,max=65535"`
	APITimeout                time.Duration `mapstructure:"API_TIMEOUT"`
	FrameWidth                int           `mapstructure:"FRAME_WIDTH" validate:"min=1"`
	FrameHeight               int           `mapstructure:"FRAME_HEIGHT" validate:"min=1"`
	CameraFocalLengthPx       float64       `mapstructure:"CAMERA_FOCAL_LENGTH_PX" validate:"gt=0"`
	CameraHeightM             float64       `mapstructure:"CAMERA_HEIGHT_M" validate:"gte=0"`
	OffRouteThresholdM        float64       `mapstructure:"OFF_ROUTE_THRESHOLD_M" validate:"gt=0"`
	SuppressPartialProjection bool          `mapstructure:"SUPPRESS_PARTIAL_PROJECTION"`
	RateLimitRPS              float64       `mapstructure:"RATE_LIMIT_RPS" validate:"gt=0"`
	RateLimitBurst            int           `mapstructure:"RATE_LIMIT_BURST" validate:"min=1"`
}

func SetConfigDefaults() {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("LOG_LEVEL", "info")

	// reference frame of the camera stream, the overlay is scaled from it to the viewport
	viper.SetDefault("FRAME_WIDTH", pkg.REFERENCE_FRAME_WIDTH)
	viper.SetDefault("FRAME_HEIGHT", pkg.REFERENCE_FRAME_HEIGHT)

	viper.SetDefault("CAMERA_FOCAL_LENGTH_PX", 1000.0)
	viper.SetDefault("CAMERA_HEIGHT_M", 1.3)
	viper.SetDefault("OFF_ROUTE_THRESHOLD_M", 50.0)
	viper.SetDefault("SUPPRESS_PARTIAL_PROJECTION", false)

	viper.SetDefault("RATE_LIMIT_RPS", 50.0)
	viper.SetDefault("RATE_LIMIT_BURST", 100)

	viper.SetDefault("HTTP_SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("HTTP_SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("HTTP_SERVER_IDLE_TIMEOUT", "60s")
	viper.SetDefault("HTTP_SERVER_READ_HEADER_TIMEOUT", "5s")
}

// ReadConfig loads .env (if any) and config.yaml from configDir. A missing config file is not an error,
// the defaults and environment still apply.
func ReadConfig(configDir string, log *zap.Logger) error {
	_ = godotenv.Load()

	SetConfigDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Info("config file not found, using defaults and environment", zap.String("dir", configDir))
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info("config file changed", zap.String("file", e.Name), zap.String("op", e.Op.String()))
	})
	viper.WatchConfig()
	return nil
}

func LoadOverlayConfig() (OverlayConfig, error) {
	var cfg OverlayConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return OverlayConfig{}, WrapErrorf(err, ErrBadParamInput, "decode overlay config")
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return OverlayConfig{}, WrapErrorf(err, ErrBadParamInput, "invalid overlay config")
	}
	return cfg, nil
}
