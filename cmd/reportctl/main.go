package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"reportshare/config"
	"reportshare/internal/infra/auth"
	logs "reportshare/internal/infra/log"
	"reportshare/internal/infra/persistence/postgres"
	"reportshare/internal/infra/pubsub"
	"reportshare/internal/infra/qrcode"
	"reportshare/internal/infra/secret"
	"reportshare/internal/usecase/impl"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var rootCmd = &cobra.Command{
	Use:           "reportctl",
	Short:         "reportctl manages the report sharing service",
	Long:          "reportctl applies schema migrations, manages share links and mints access tokens for the report sharing service.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(newMigrateCmd(), newLinksCmd(), newTokenCmd())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("reportctl: %+v", err)
	}
}

// withApp starts the dependencies a command needs, fills targets and stops everything when run returns.
func withApp(ctx context.Context, run func(context.Context) error, targets ...any) error {
	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.New,
			logs.New,
			func() context.Context { return ctx },
			postgres.New,
			postgres.NewSubjectRepository,
			postgres.NewLinkRepository,
			postgres.NewTransactionManager,
			auth.NewJWTService,
			secret.NewPepperedHasher,
			qrcode.NewQRCodeService,
			pubsub.NewEventPublisher,
			impl.NewLinkService,
		),
		fx.Populate(targets...),
	)
	if err := app.Err(); err != nil {
		return errors.WithStack(err)
	}

	if err := app.Start(ctx); err != nil {
		return errors.WithStack(err)
	}
	runErr := run(ctx)
	if err := app.Stop(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		return errors.WithStack(err)
	}

	return runErr
}
