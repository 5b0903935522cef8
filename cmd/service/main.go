package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/vstojkovic/repforge/internal"
	"github.com/vstojkovic/repforge/internal/config"
	"github.com/vstojkovic/repforge/internal/logging"
	"github.com/vstojkovic/repforge/pkg"

	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

// secrets come from the environment, never from the TOML config file
type secrets struct {
	SentryDSN         string `env:"SENTRY_DSN"`
	AdminUsername     string `env:"REPFORGE_ADMIN_USERNAME"`
	AdminPasswordHash string `env:"REPFORGE_ADMIN_PASSWORD_HASH"`
	AppSecret         string `env:"REPFORGE_APP_SECRET"`
	RedisPassword     string `env:"REPFORGE_REDIS_PASS"`
	HoneycombEnabled  bool   `env:"HONEYCOMB_ENABLED"`
	HoneycombAPIKey   string `env:"HONEYCOMB_API_KEY"`
	OtelServiceName   string `env:"OTEL_SERVICE_NAME"`
}

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	var sec secrets
	if err := envconfig.Process(ctx, &sec); err != nil {
		log.Fatalf("process env secrets: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    false,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sec.SentryDSN,
		SentryServerName: "repforge-service",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	if sec.AdminUsername == "" || sec.AdminPasswordHash == "" {
		log.Errorf("admin username and password not set. use REPFORGE_ADMIN_USERNAME and REPFORGE_ADMIN_PASSWORD_HASH")
		sec.AdminUsername = "todo"
		sec.AdminPasswordHash = "$$2a$$14$$gPDY7P8qGduPi.OKoPKzM.N/MTyZpP.q2tmbprdHH.1jyw7fK3KfW"
	}

	if sec.AppSecret == "" {
		log.Errorf("app secret not set. use REPFORGE_APP_SECRET")
	}

	if sec.RedisPassword == "" {
		log.Errorf("redis password not set. use REPFORGE_REDIS_PASS")
	}

	if sec.HoneycombEnabled {
		if sec.OtelServiceName == "" {
			log.Warnln("OTEL_SERVICE_NAME env var not set")
		}
		if sec.HoneycombAPIKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			AppSecret:               sec.AppSecret,
			VersionInfo:             versionInfo,
			AdminUsername:           sec.AdminUsername,
			AdminPasswordHash:       sec.AdminPasswordHash,
			RedisPassword:           sec.RedisPassword,
			HoneycombTracingEnabled: sec.HoneycombEnabled,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}

// tryGetLastCommitHash will try to get the last commit hash
// assumes that the built main executable is in project root
func tryGetLastCommitHash() (string, error) {
	cmd := exec.Command("/usr/bin/git", "rev-parse", "HEAD")
	stdout, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return pkg.BytesToString(stdout), nil
}
