package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/shaiso/Concert/internal/api"
	"github.com/shaiso/Concert/internal/deploy"
	"github.com/shaiso/Concert/internal/mq"
	"github.com/shaiso/Concert/internal/workflow"
)

// ServeOptions — параметры HTTP сервера.
type ServeOptions struct {
	Addr     string
	Consume  bool
	Preview  bool
	Registry *prometheus.Registry
}

// NewServeCmd создаёт команду HTTP сервера манифестов.
//
// Сервер читает манифесты из хранилища, с --consume наполняет индекс
// объявлений из очереди, с --preview собирает конфигурацию по запросу.
func NewServeCmd(projectFn func() Project, registryFn func() *prometheus.Registry) *cobra.Command {
	var opts ServeOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve published manifests over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			opts.Registry = registryFn()
			return Serve(ctx, projectFn(), opts)
		},
	}

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", addr, "Listen address")
	cmd.Flags().BoolVar(&opts.Consume, "consume", false, "Consume manifest announcements from RabbitMQ")
	cmd.Flags().BoolVar(&opts.Preview, "preview", false, "Enable /api/v1/preview for the configured composition")

	return cmd
}

// Serve запускает сервер и останавливает его после отмены ctx.
func Serve(ctx context.Context, project Project, opts ServeOptions) error {
	logger := project.logger()

	store, err := deploy.NewMinioStore(deploy.MinioConfigFromEnv())
	if err != nil {
		return err
	}

	index := deploy.NewIndex()
	cfg := api.Config{
		Manifests: deploy.New(deploy.Config{Store: store, Logger: logger}),
		Index:     index,
		Registry:  opts.Registry,
		Logger:    logger,
	}
	if opts.Preview {
		cfg.Preview = func(ctx context.Context) ([]*workflow.Manifest, error) {
			c, err := project.Load()
			if err != nil {
				return nil, err
			}
			graphs, err := project.Render(ctx, c, nil, false)
			if err != nil {
				return nil, err
			}
			return Manifests(graphs)
		}
	}

	if opts.Consume {
		conn, err := mq.NewConnection(brokerURL(), logger)
		if err != nil {
			return err
		}
		defer conn.Close()
		if err := mq.SetupTopology(ctx, conn); err != nil {
			return err
		}
		consumer := mq.NewConsumer(conn, logger, mq.ConsumerConfig{
			Queue:   mq.QueueManifestsPublished,
			Handler: index.HandleMessage,
		})
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("consumer stopped", "error", err)
			}
		}()
	}

	mux := http.NewServeMux()
	api.NewHandler(cfg).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              opts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", opts.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}
