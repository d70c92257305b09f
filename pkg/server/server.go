package server

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KyleBrandon/thermometer-server/config"
	"github.com/KyleBrandon/thermometer-server/internal/database"
	"github.com/KyleBrandon/thermometer-server/internal/notifier"
	"github.com/KyleBrandon/thermometer-server/internal/sensor"
	"github.com/KyleBrandon/thermometer-server/internal/thermometer"
	"github.com/KyleBrandon/thermometer-server/internal/threshold"
	"github.com/KyleBrandon/thermometer-server/pkg/server/health"
	"github.com/KyleBrandon/thermometer-server/pkg/server/monitors"
	"github.com/KyleBrandon/thermometer-server/pkg/server/notifications"
	"github.com/KyleBrandon/thermometer-server/pkg/server/temperatures"
	"github.com/KyleBrandon/thermometer-server/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/twilio"
)

const (
	DEFAULT_SERVER_PORT          = "8080"
	DEFAULT_CONFIG_FILE_LOCATION = "./config/config.yaml"
	SHUTDOWN_TIMEOUT             = 10 * time.Second
)

// Used by "flag" to read command line argument
var (
	cmdLineFlagMockSensor bool
	cmdLineFlagLogLevel   string
)

type ServerConfig struct {
	mux                *http.ServeMux
	ServerPort         string
	DatabaseURL        string
	UseMockSensor      bool
	LogFileLocation    string
	ConfigFileLocation string
	Logger             *slog.Logger
	LoggerLevel        *slog.LevelVar
	LogFile            *os.File
	Notifier           *notify.Notify

	Settings     config.Config
	Engine       *threshold.Engine
	Thermometer  *thermometer.Thermometer
	Dispatcher   *notifier.Dispatcher
	Queries      *database.Queries
	DBConnection *sql.DB
}

// init will read and initialize the global command line variables
func init() {
	flag.BoolVar(&cmdLineFlagMockSensor, "use_mock_sensor", false, "Indicate if we should use a mock sensor for the server instance.")
	flag.StringVar(&cmdLineFlagLogLevel, "log_level", config.DefaultLogLevel.String(), "The log level to start the server at")
}

// InitializeServer loads the configuration and wires the sampling pipeline.
func InitializeServer() (*ServerConfig, error) {
	slog.Debug(">>InitializeServer")
	defer slog.Debug("<<InitializeServer")

	sc := &ServerConfig{}

	// MUST BE FIRST
	if err := sc.readEnvironmentVariables(); err != nil {
		return nil, err
	}

	if err := sc.configureLogger(); err != nil {
		return nil, err
	}

	settings, err := config.LoadConfigSettings(sc.ConfigFileLocation)
	if err != nil {
		slog.Error("failed to load config file", "file", sc.ConfigFileLocation, "error", err)
		return nil, err
	}
	sc.Settings = settings

	if err := sc.openDatabase(); err != nil {
		return nil, err
	}

	if err := sc.initializePipeline(); err != nil {
		sc.close()
		return nil, err
	}

	sc.registerRoutes()

	return sc, nil
}

func (sc *ServerConfig) initializePipeline() error {
	sensorConfig := sc.Settings.SensorConfig()

	source, err := sensor.NewSource(sensorConfig, sc.UseMockSensor)
	if err != nil {
		slog.Error("failed to initialize the temperature source", "error", err)
		return err
	}

	alarm, err := sensor.NewAlarm(sensorConfig, sc.UseMockSensor)
	if err != nil {
		slog.Warn("no alarm configured, notifications will not drive an output", "error", err)
		alarm = nil
	}

	notifierConfig := notifier.Config{
		Notifier:      sc.Notifier,
		Alarm:         alarm,
		AlarmDuration: sc.Settings.AlarmDuration(),
	}

	thermometerConfig := thermometer.Config{
		Capacity:             sc.Settings.HistoryCapacity,
		MaxConsecutiveErrors: sc.Settings.MaxConsecutiveErrors,
	}

	// leave the stores as nil interfaces when there is no database
	if sc.Queries != nil {
		notifierConfig.Store = sc.Queries
		thermometerConfig.Store = sc.Queries
	}

	sc.Dispatcher = notifier.NewDispatcher(notifierConfig, nil)
	sc.Engine = threshold.NewEngine()

	for _, m := range sc.Settings.Monitors {
		id, err := sc.Engine.AddConfig(m.MonitorConfig())
		if err != nil {
			return fmt.Errorf("failed to add monitor %s: %w", m.Name, err)
		}

		sc.Engine.AddCallback(id, sc.Dispatcher.Callback())
		slog.Info("monitor registered", "id", id, "name", m.Name)
	}

	sc.Thermometer = thermometer.New(source, sc.Engine, thermometerConfig)

	return nil
}

func (sc *ServerConfig) registerRoutes() {
	sc.mux = http.NewServeMux()

	healthHandler := health.NewHandler(sc.LoggerLevel)
	healthHandler.RegisterRoutes(sc.mux)

	monitorHandler := monitors.NewHandler(sc.Engine, sc.Dispatcher.Callback())
	monitorHandler.RegisterRoutes(sc.mux)

	// leave the stores as nil interfaces when there is no database
	var sampleStore temperatures.SampleStore
	var notificationStore notifications.NotificationStore
	if sc.Queries != nil {
		sampleStore = sc.Queries
		notificationStore = sc.Queries
	}

	temperatureHandler := temperatures.NewHandler(sc.Thermometer, sampleStore)
	temperatureHandler.RegisterRoutes(sc.mux)

	notificationHandler := notifications.NewHandler(notificationStore, sc.Dispatcher.Hub(), sc.Settings.OriginPatterns)
	notificationHandler.RegisterRoutes(sc.mux)
}

// RunServer samples the source and serves the API until SIGINT/SIGTERM or a
// fatal sampling error.
func (sc *ServerConfig) RunServer() error {
	slog.Info(">>RunServer")
	defer slog.Info("<<RunServer")

	defer sc.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", sc.ServerPort),
		Handler: sc.mux,
	}

	errCh := make(chan error, 2)

	go func() {
		if err := sc.Thermometer.Run(ctx); err != nil {
			errCh <- fmt.Errorf("thermometer stopped: %w", err)
		}
	}()

	go func() {
		slog.Info("Starting server", "port", sc.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server failed: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown requested")
	case runErr = <-errCh:
		slog.Error("stopping server", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown the server", "error", err)
	}

	return runErr
}

func (sc *ServerConfig) close() {
	if sc.Dispatcher != nil {
		sc.Dispatcher.CancelAndWait()
	}

	if sc.DBConnection != nil {
		sc.DBConnection.Close()
	}

	if sc.LogFile != nil && sc.LogFile != os.Stderr {
		sc.LogFile.Close()
	}
}

func (sc *ServerConfig) readEnvironmentVariables() error {
	slog.Info(">>readEnvironmentVariables")
	defer slog.Info("<<readEnvironmentVariables")

	// load the environment
	err := godotenv.Load()
	if err != nil {
		slog.Warn("could not load .env file", "error", err)
	}

	sc.DatabaseURL = os.Getenv("DATABASE_URL")
	if len(sc.DatabaseURL) == 0 {
		slog.Warn("no database connection string is configured, samples and notifications will not be recorded")
	}

	sc.ServerPort = os.Getenv("PORT")
	if len(sc.ServerPort) == 0 {
		sc.ServerPort = DEFAULT_SERVER_PORT
	}

	sc.LogFileLocation = os.Getenv("LOG_FILE_LOCATION")

	sc.ConfigFileLocation = os.Getenv("CONFIG_FILE_LOCATION")
	if len(sc.ConfigFileLocation) == 0 {
		sc.ConfigFileLocation = DEFAULT_CONFIG_FILE_LOCATION
	}

	smsNotifier, err := newTwilioNotifier(
		os.Getenv("TWILIO_ACCOUNT_SID"),
		os.Getenv("TWILIO_AUTH_TOKEN"),
		os.Getenv("TWILIO_FROM_PHONE_NO"),
		os.Getenv("TWILIO_TO_PHONE_NO"),
	)
	if err != nil {
		return err
	}
	sc.Notifier = smsNotifier

	// mock sensor flag is a command line flag for debugging
	sc.UseMockSensor = cmdLineFlagMockSensor

	return nil
}

// newTwilioNotifier returns nil when no Twilio account is configured.
func newTwilioNotifier(accountSID, authToken, fromPhone, toPhone string) (*notify.Notify, error) {
	if len(accountSID) == 0 {
		return nil, nil
	}

	slog.Info("Twilio account information present, configuring Notifier")

	twilioService, err := twilio.New(accountSID, authToken, fromPhone)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Twilio service: %w", err)
	}

	twilioService.AddReceivers(toPhone)

	smsNotifier := notify.New()
	smsNotifier.UseServices(twilioService)

	return smsNotifier, nil
}

// configureLogger will initialize the slog to stderr and save the log level so it can be set via API.
func (sc *ServerConfig) configureLogger() error {
	slog.Info(">>configureLogger")
	defer slog.Info("<<configureLogger")

	currentLevel := new(slog.LevelVar)

	level, err := utils.ParseLogLevel(cmdLineFlagLogLevel)
	if err != nil {
		slog.Error("Failed to parse the log level, setting to DefaultLogLevel", "error", err, "log_level", cmdLineFlagLogLevel)
		level = config.DefaultLogLevel
	}

	currentLevel.Set(level)

	// by default we will write to stderr
	logFile := os.Stderr
	if len(sc.LogFileLocation) != 0 {
		slog.Info("Save to log file", "file", sc.LogFileLocation)
		logFile, err = os.OpenFile(sc.LogFileLocation, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			slog.Error("Failed to open log file", "error", err)
			return err
		}
	}

	fileHandler := slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: currentLevel})

	logger := slog.New(fileHandler)

	slog.SetDefault(logger)

	sc.Logger = logger
	sc.LoggerLevel = currentLevel
	sc.LogFile = logFile

	return nil
}

func (sc *ServerConfig) openDatabase() error {
	if len(sc.DatabaseURL) == 0 {
		return nil
	}

	db, err := sql.Open("postgres", sc.DatabaseURL)
	if err != nil {
		slog.Error("failed to open database connection", "error", err)
		return err
	}

	sc.DBConnection = db
	sc.Queries = database.New(db)

	return nil
}
