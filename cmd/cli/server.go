package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/cmd/bootstrap"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/infra/database/postgres"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/system"
)

const pidFile = "run/server.pid"

func startServer() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx)
	if err != nil {
		return fmt.Errorf("não foi possível criar a aplicação: %w", err)
	}
	defer postgres.Close()

	if err := system.SavePID(pidFile, os.Getpid()); err != nil {
		return err
	}
	defer system.RemovePID(pidFile)

	return app.Start(ctx)
}

func stopServer() error {
	pid, err := system.LoadPID(pidFile)
	if err != nil {
		return err
	}

	if err := system.TerminateProcess(pid); err != nil {
		return err
	}

	system.RemovePID(pidFile)
	return nil
}
