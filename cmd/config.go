package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configBaseName   = "conda-store"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	serverFlagName       = "server"
	tokenFlagName        = "auth-token"
	outputFlagName       = "output"
	verboseFlagName      = "verbose"
	timeoutFlagName      = "timeout"
	pollIntervalFlagName = "poll-interval"

	serverConfigKey         = "server.url"
	tokenConfigKey          = "server.token"
	retriesConfigKey        = "server.retries"
	requestTimeoutConfigKey = "server.request_timeout"
	outputConfigKey         = "output.format"
	verboseConfigKey        = "log.verbose"
	timeoutConfigKey        = "wait.timeout"
	pollIntervalConfigKey   = "wait.poll_interval"
	usernameConfigKey       = "auth.username"
	passwordConfigKey       = "auth.password"

	outputFormatTable = "table"
	outputFormatYAML  = "yaml"

	defaultServerURL      = "http://localhost:8080"
	defaultOutputFormat   = outputFormatTable
	defaultTimeout        = 10 * time.Minute
	defaultPollInterval   = 5 * time.Second
	defaultRetries        = 3
	defaultRequestTimeout = 30 * time.Second

	envPrefix = "CONDA_STORE"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".conda-store.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(serverConfigKey, defaultServerURL)
	viper.SetDefault(tokenConfigKey, "")
	viper.SetDefault(retriesConfigKey, defaultRetries)
	viper.SetDefault(requestTimeoutConfigKey, defaultRequestTimeout)
	viper.SetDefault(outputConfigKey, defaultOutputFormat)
	viper.SetDefault(timeoutConfigKey, defaultTimeout)
	viper.SetDefault(pollIntervalConfigKey, defaultPollInterval)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(verboseConfigKey, false)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
