package cmd

import (
	"os"
	"strings"

	"github.com/heroku/rollrus"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/c9s/ordmap/pkg/cmd/cmdutil"
)

var RootCmd = &cobra.Command{
	Use:   "ordmap",
	Short: "ordmap red-black tree toolkit",
	Long:  "replay workloads, benchmark and serve a red-black tree ordered map",

	// SilenceUsage is an option to silence usage when an error occurs.
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadDotenv(".env.local", ".env"); err != nil {
			return err
		}

		// bind the local flags of the sub-command so that the env vars and the config
		// file can override them
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return errors.Wrap(err, "failed to bind local flags")
		}

		if configFile := viper.GetString("config"); configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return errors.Wrapf(err, "failed to load config file %s", configFile)
			}

			log.Debugf("config file loaded: %s", viper.ConfigFileUsed())
		}

		setupLogging(viper.GetBool("debug"), viper.GetString("log-file"))

		if token := viper.GetString("rollbar-token"); token != "" && !rollbarHookInstalled {
			environment := viper.GetString("env")
			log.AddHook(rollrus.NewHook(token, environment))
			rollbarHookInstalled = true
			log.Debugf("rollbar hook installed, environment %s", environment)
		}

		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	cmdutil.PersistentFlags(RootCmd.PersistentFlags())
}

// loadDotenv loads the dotenv files that exist, the first file wins.
func loadDotenv(files ...string) error {
	for _, dotenvFile := range files {
		if _, err := os.Stat(dotenvFile); err != nil {
			continue
		}

		if err := godotenv.Load(dotenvFile); err != nil {
			return errors.Wrapf(err, "error loading dotenv file %s", dotenvFile)
		}

		log.Debugf("dotenv file loaded: %s", dotenvFile)
	}

	return nil
}

var fileHookInstalled, rollbarHookInstalled bool

func setupLogging(debug bool, logFile string) {
	logger := log.StandardLogger()
	logger.SetFormatter(&prefixed.TextFormatter{})

	if debug {
		logger.SetLevel(log.DebugLevel)
	}

	if logFile == "" || fileHookInstalled {
		return
	}

	writer := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100, // megabytes
		MaxBackups: 7,
		MaxAge:     30, // days
	}

	logger.AddHook(
		lfshook.NewHook(
			lfshook.WriterMap{
				log.DebugLevel: writer,
				log.InfoLevel:  writer,
				log.WarnLevel:  writer,
				log.ErrorLevel: writer,
				log.FatalLevel: writer,
			},
			&log.JSONFormatter{},
		),
	)
	fileHookInstalled = true
}

func Execute() {
	viper.SetEnvPrefix("ordmap")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Enable environment variable binding, the env vars are not overloaded yet.
	viper.AutomaticEnv()

	// Once the flags are defined, we can bind config keys with flags.
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		log.WithError(err).Errorf("failed to bind persistent flags. please check the flag settings.")
	}

	if err := viper.BindPFlags(RootCmd.Flags()); err != nil {
		log.WithError(err).Errorf("failed to bind local flags. please check the flag settings.")
	}

	if err := RootCmd.Execute(); err != nil {
		log.WithError(err).Fatalf("cannot execute command")
	}
}
