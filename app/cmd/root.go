package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.elastic.co/apm"
	"go.elastic.co/apm/transport"

	"github.com/kalyan021004/todoboard/internal/config"
	"github.com/kalyan021004/todoboard/internal/infra/server"
)

var (
	configFile string
	appConfig  config.App
	logFile    *os.File

	defaultConfigPaths = []string{
		".",
		"./config",
		"/app/config",
	}

	rootCmd = &cobra.Command{
		Use:   "todoboard",
		Short: "todoboard is a collaborative task board server.",
		Long:  `todoboard is a collaborative task board backed by Elasticsearch`,
		Run: func(cmd *cobra.Command, args []string) {
			components, err := server.NewComponents(&appConfig)
			if err != nil {
				log.Fatal().Err(err).Send()
			}
			components.Run()
		},
	}
)

// Execute runs the root command, which serves until interrupted.
func Execute() {
	defer closeLogFile()
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Send()
	}
}

func init() {
	cobra.OnInitialize(initConfig, configureLogging, configureApm)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (by default, looks in [%v] for 'todoboard.yaml')", defaultConfigPaths))
}

// initConfig reads the application config into the package-level appConfig.
func initConfig() {
	viper.AllowEmptyEnv(true)
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("todoboard")
		for _, p := range defaultConfigPaths {
			viper.AddConfigPath(p)
		}
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to read the config file")
	}
	log.Info().Msgf("Using config file: %v", viper.ConfigFileUsed())

	// Unmarshal the whole tree rather than UnmarshalKey: the latter does
	// not see env var overrides, which is the reason for the TopLevel
	// wrapper namespacing.
	var wrapper config.TopLevel
	if err := viper.Unmarshal(&wrapper); err != nil {
		log.Error().Err(err).Send()
		closeLogFile()
		os.Exit(1)
	}
	appConfig = wrapper.Todoboard.Server
}

// configureLogging sets the global zerolog output, format and level from
// the already-loaded config.
func configureLogging() {
	writeTo := configuredLogWriter()
	if jsonLogging := appConfig.Logging != nil &&
		appConfig.Logging.Json != nil && *appConfig.Logging.Json; jsonLogging {
		log.Logger = log.Output(writeTo)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: writeTo})
	}
	zerolog.SetGlobalLevel(configuredLogLevel())
}

func configuredLogWriter() *os.File {
	if appConfig.Logging == nil || appConfig.Logging.File == nil {
		return os.Stderr
	}
	f, err := os.OpenFile(*appConfig.Logging.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open log file for writing.")
	}
	logFile = f
	return f
}

func configuredLogLevel() zerolog.Level {
	if appConfig.Logging == nil || appConfig.Logging.Level == nil {
		return zerolog.InfoLevel
	}
	parsedLevel, err := zerolog.ParseLevel(*appConfig.Logging.Level)
	if err != nil {
		log.Warn().
			Str("configured_level", *appConfig.Logging.Level).
			Str("will_use_level", zerolog.InfoLevel.String()).
			Msg("Invalid level configured, ignoring")
		return zerolog.InfoLevel
	}
	return parsedLevel
}

func closeLogFile() {
	if logFile != nil {
		_ = logFile.Close()
	}
}

// configureApm maps config file values onto the env vars the APM agent
// reads, then rebuilds the global tracer so they take effect.
func configureApm() {
	setApmEnvIfUnset("ELASTIC_APM_SERVICE_NAME", "todoboard")
	if appConfig.ApmClient != nil {
		apmConf := *appConfig.ApmClient
		log.Info().Interface("apm_conf", apmConf).Msg("Configuring APM based on config file values")
		if apmConf.Address != nil {
			mustSetApmEnv("ELASTIC_APM_SERVER_URL", *apmConf.Address)
		}
		if apmConf.SecretToken != nil {
			mustSetApmEnv("ELASTIC_APM_SECRET_TOKEN", *apmConf.SecretToken)
		}
	}

	apmTransport, err := transport.NewHTTPTransport()
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	tracer, err := apm.NewTracerOptions(apm.TracerOptions{Transport: apmTransport})
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	apm.DefaultTracer.Close()
	apm.DefaultTracer = tracer
}

func setApmEnvIfUnset(key string, value string) {
	if v := os.Getenv(key); len(v) == 0 {
		mustSetApmEnv(key, value)
	}
}

func mustSetApmEnv(key string, value string) {
	if err := os.Setenv(key, value); err != nil {
		log.Fatal().Err(err).Send()
	}
}
