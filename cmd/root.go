package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-change/internal/assets"
	"github.com/spigell/job-change/internal/logger"
	"github.com/spigell/job-change/internal/pipeline"
	"github.com/spigell/job-change/internal/server"
	"github.com/spigell/job-change/internal/store"
)

const (
	app       = "job-change"
	envPrefix = "JOB_CHANGE"
)

type Config struct {
	Assets   assets.Paths   `mapstructure:"assets"`
	Dataset  string         `mapstructure:"dataset"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Server   server.Config  `mapstructure:"server"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
}

type SnapshotConfig struct {
	Store string `mapstructure:"store"`
	Path  string `mapstructure:"path"`
}

type CacheConfig struct {
	Size int `mapstructure:"size"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max-size-mb"`
	MaxBackups int    `mapstructure:"max-backups"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-change predicts whether a candidate is likely to change jobs and aggregates hiring analytics",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-change.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("assets.classifier", "assets/classifier.json")
	v.SetDefault("assets.scaler", "assets/scaler.json")
	v.SetDefault("assets.accuracy", "assets/accuracy.txt")
	v.SetDefault("dataset", "data/aug_train.csv")
	v.SetDefault("snapshot.store", store.KindFile)
	v.SetDefault("snapshot.path", "assets/analytics.json")
	v.SetDefault("server.addr", server.DefaultAddr)
	v.SetDefault("server.shutdown-timeout", "10s")
	v.SetDefault("cache.size", pipeline.DefaultCacheSize)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max-size-mb", 50)
	v.SetDefault("log.max-backups", 3)
}

func initConfig() {
	// Version needs no configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless it was passed explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

// setup builds the logger and reads the config shared by every command.
func setup() (*zap.Logger, *Config) {
	bootstrap, err := logger.New(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug")})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		bootstrap.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		bootstrap.Fatal("config is required")
	}

	if config.Log.File == "" {
		return bootstrap, config
	}

	l, err := logger.New(logger.Options{
		JSON:       viper.GetBool("json"),
		Debug:      viper.GetBool("debug"),
		File:       config.Log.File,
		MaxSizeMB:  config.Log.MaxSizeMB,
		MaxBackups: config.Log.MaxBackups,
	})
	if err != nil {
		bootstrap.Fatal("creating a file logger", zap.Error(err), zap.String("file", config.Log.File))
	}
	return l, config
}

func newPredictor(config *Config, l *zap.Logger) (*assets.Provider, *pipeline.Predictor) {
	provider := assets.NewProvider(config.Assets, l)

	predictor, err := pipeline.New(provider, l, pipeline.WithCacheSize(config.Cache.Size))
	if err != nil {
		l.Fatal("creating the prediction pipeline", zap.Error(err))
	}
	return provider, predictor
}
