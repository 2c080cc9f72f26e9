package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jishaal/old.jishaal.com/internal/config"
	"github.com/jishaal/old.jishaal.com/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	appConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   "jishaal",
	Short: "Builds the jishaal.com blog",
	Long: `jishaal builds the jishaal.com personal site: it reads Markdown posts from
'./content/', renders them along with a paginated index, one listing page per
tag and a tags overview, and writes the static site to the output directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

func Execute() {
	logging.SetDefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

func initializeConfig(_ *cobra.Command) error {
	// A local .env file may provide JISHAAL_* overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("JISHAAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configUsed := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if cfgFile != "" {
			return fmt.Errorf("config file %s not found: %w", cfgFile, err)
		}
	} else {
		configUsed = v.ConfigFileUsed()
	}

	if logLevel != "" {
		v.Set("log.level", logLevel)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	appConfig = cfg

	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if configUsed != "" {
		log.Info().Str("file", configUsed).Msg("Using config file")
	} else {
		log.Info().Msg("No config file found, using defaults and environment variables")
	}
	return nil
}
