package main

import (
	"context"
	"fedi_engine/dal"
	"fedi_engine/logic"
	"fedi_engine/server"
	"fedi_engine/shared"
	"fmt"
	"github.com/charmbracelet/log"
	"go.uber.org/fx"
	"io"
	"net/http"
	"os"
	"sync"
)

type initErrorHandler struct {
}

func (*initErrorHandler) HandleError(err error) {
	fmt.Fprintf(os.Stderr, "Failed to initialize dependency injection\n%v", err)
}

var logger *log.Logger

func main() {

	cfg := shared.LoadConfig()
	provideConfig := func() *shared.Config {
		return cfg
	}

	logger = initLogger(cfg)
	provideLogger := func() shared.ILogger {
		return logger
	}

	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			provideConfig,
			provideLogger,
			shared.NewClock,
			shared.NewUserAgent,
			server.NewHTTPServer,
			fx.Annotate(server.NewMux, fx.ParamTags(`group:"handler_group"`)),
			dal.NewRepo,
			logic.NewMetrics,
			logic.NewKeyStore,
			logic.NewRequestSigner,
			logic.NewApHttpClient,
			logic.NewActivitySender,
			logic.NewFederationPolicy,
			logic.NewLockManager,
			logic.NewRenderer,
			logic.NewResolver,
			logic.NewPersonService,
			logic.NewNoteService,
			logic.NewSuspendedHostsCache,
			logic.NewInstanceHealth,
			logic.NewInstanceMetadata,
			logic.NewDeliverProcessor,
			logic.NewMessenger,
			logic.NewHttpSigChecker,
			logic.NewInbox,
			logic.NewProfiler,
			asHandlerGroupDef(server.NewApubHandlerGroup),
			asHandlerGroupDef(server.NewApiHandlerGroup),
			asHandlerGroupDef(server.NewMetricsHandlerGroup),
		),
		fx.Invoke(
			func(repo dal.IRepo) { repo.InitUpdateDb() },
			registerHooks,
			func(*http.Server) {},
		),
		fx.ErrorHook(&initErrorHandler{}),
	)
	app.Run()
}

func asHandlerGroupDef(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(server.IHandlerGroup)),
		fx.ResultTags(`group:"handler_group"`),
	)
}

func initLogger(cfg *shared.Config) *log.Logger {

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
		if err != nil {
			msg := fmt.Sprintf("Failed to open log file '%v': %v", cfg.LogFile, err)
			log.Fatal(msg)
		}
		out = io.MultiWriter(os.Stdout, logFile)
	}

	logger := log.New(out)
	logger.SetReportTimestamp(true)
	logger.SetTimeFormat("2006-01-02 15:04:05.000")
	switch cfg.LogLevel {
	case "Debug":
		logger.SetLevel(log.DebugLevel)
	case "Info":
		logger.SetLevel(log.InfoLevel)
	case "Warn":
		logger.SetLevel(log.WarnLevel)
	case "Error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.ErrorLevel)
	}
	logger.SetReportCaller(true)

	return logger
}

// Background loops run until shutdown; OnStop waits for them so in-flight deliveries are bookkept.
func registerHooks(lc fx.Lifecycle, metrics logic.IMetrics, messenger logic.IMessenger, prof logic.IProfiler) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	lc.Append(
		fx.Hook{
			OnStart: func(context.Context) error {
				logger.Printf("Application starting up")
				metrics.ServiceStarted()
				wg.Add(2)
				go func() {
					defer wg.Done()
					messenger.Run(ctx)
				}()
				go func() {
					defer wg.Done()
					prof.Run(ctx)
				}()
				return nil
			},
			OnStop: func(stopCtx context.Context) error {
				logger.Printf("Application shutting down")
				cancel()
				done := make(chan struct{})
				go func() {
					wg.Wait()
					close(done)
				}()
				select {
				case <-done:
					return nil
				case <-stopCtx.Done():
					return stopCtx.Err()
				}
			},
		},
	)
}
