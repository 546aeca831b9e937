package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/arkavo-org/iroh-go/node"
)

var rootCmd = &cobra.Command{
	Use:   "iroh",
	Short: "Content-addressed blob sharing and document sync",
	Long:  "CLI for storing blobs, sharing them by ticket, and syncing multi-writer documents.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ~/.config/iroh/config.yaml)")
	rootCmd.PersistentFlags().String("storage", "", "node storage directory (default: ~/.local/share/iroh)")
	rootCmd.PersistentFlags().Bool("no-relay", false, "disable relay-assisted connectivity")
	rootCmd.PersistentFlags().String("relay-url", "", "custom relay URL")
	rootCmd.PersistentFlags().Bool("verbose", false, "log to stderr as well as the log file")

	viper.BindPFlag("storage", rootCmd.PersistentFlags().Lookup("storage"))
	viper.BindPFlag("no_relay", rootCmd.PersistentFlags().Lookup("no-relay"))
	viper.BindPFlag("relay_url", rootCmd.PersistentFlags().Lookup("relay-url"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("IROH")
	viper.AutomaticEnv()
	viper.SetDefault("storage", defaultStorageDir())

	viper.ReadInConfig()

	node.SetLogger(newLogger())
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "iroh")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "iroh")
	}
	return ".iroh"
}

func defaultStorageDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "iroh")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "iroh")
	}
	return ".iroh"
}

func storageDir() string {
	return viper.GetString("storage")
}

// newLogger writes JSON logs to a rotated file under the storage
// directory, and to stderr when verbose is set.
func newLogger() *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	fileSink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(storageDir(), "iroh.log"),
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	})

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(cfg), fileSink, zap.InfoLevel),
	}
	if viper.GetBool("verbose") {
		cores = append(cores,
			zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), zap.DebugLevel))
	}
	return zap.New(zapcore.NewTee(cores...))
}

// openNode starts a node from the CLI configuration.
func openNode(docsEnabled bool) (*node.Node, error) {
	cfg := node.Config{
		StoragePath:    storageDir(),
		RelayEnabled:   !viper.GetBool("no_relay"),
		CustomRelayURL: viper.GetString("relay_url"),
		DocsEnabled:    docsEnabled,
	}
	return node.New(cfg)
}
