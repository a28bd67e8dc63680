package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"reportshare/config"
	"reportshare/internal/delivery"
	"reportshare/internal/delivery/api"
	apimiddleware "reportshare/internal/delivery/api/middleware"
	"reportshare/internal/delivery/api/router/handler"
	"reportshare/internal/domain/savings"
	"reportshare/internal/infra/auth"
	logs "reportshare/internal/infra/log"
	"reportshare/internal/infra/persistence/postgres"
	"reportshare/internal/infra/pubsub"
	"reportshare/internal/infra/qrcode"
	"reportshare/internal/infra/secret"
	"reportshare/internal/usecase/impl"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewSubjectRepository,
			postgres.NewLinkRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewJWTService,
			secret.NewPepperedHasher,
			qrcode.NewQRCodeService,
			pubsub.NewEventPublisher,
			newCalculator,
		),
	)
}

// newCalculator builds the savings calculator from the configured rates
func newCalculator(cfg *config.Config) (*savings.Calculator, error) {
	if cfg.Calculation == nil {
		return nil, errors.New("calculation rates must be configured")
	}

	calculator, err := savings.NewCalculator(savings.Rates{
		Total:    cfg.Calculation.RateTotal,
		Employer: cfg.Calculation.RateEmployer,
		Employee: cfg.Calculation.RateEmployee,
		Currency: cfg.Calculation.Currency,
	}, func() time.Time { return time.Now().UTC() })
	if err != nil {
		return nil, errors.Wrap(err, "invalid calculation rates")
	}

	return calculator, nil
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewLinkService,
			impl.NewReportService,
			impl.NewAccessService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			apimiddleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewShareHandler,
			handler.NewWebhookHandler,
			handler.NewReportHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
