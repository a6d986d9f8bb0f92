package cmd

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/marcopiovanello/yt-fetch/server/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "yt-fetch",
	Short:         "Preview, download and convert media from a link",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(configFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "./config.yml", "Config file path")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(configCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3033)
	v.SetDefault("paths.download_path", ".")
	v.SetDefault("paths.downloader_path", "yt-dlp")
	v.SetDefault("paths.transcoder_path", "ffmpeg")
	v.SetDefault("paths.local_database_path", ".")
	v.SetDefault("logging.log_path", "yt-fetch.log")
	v.SetDefault("logging.enable_file_logging", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("transfer.chunk_size", 1<<20)
	v.SetDefault("transfer.request_timeout", "30s")
	v.SetDefault("convert.target_ext", "mp3")
	v.SetDefault("convert.auto_convert_audio", true)
	v.SetDefault("authentication.require_auth", false)
	v.SetDefault("openid.use_openid", false)
}

func loadConfig(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return err
		}
		slog.Debug("config file not found, using defaults", slog.String("path", path))
	}

	cfg := config.Instance()
	if err := v.Unmarshal(cfg); err != nil {
		return err
	}
	cfg.SetPath(path)

	return cfg.Validate()
}
