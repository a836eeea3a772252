package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/rocketshoes/cartservice/cartstore"
	"github.com/rocketshoes/cartservice/config"
	"github.com/rocketshoes/cartservice/inventory"
	"github.com/rocketshoes/cartservice/logging"
	"github.com/rocketshoes/cartservice/services"
	"github.com/rocketshoes/cartservice/telemetry"
)

const serviceName = "cartservice"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logging.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("cartservice stopped")
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTelDisabled {
		log.Info("OpenTelemetry disabled")
	} else {
		shutdown, err := telemetry.Init(ctx, serviceName, cfg.OTLPEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				log.WithError(err).Warn("telemetry shutdown")
			}
		}()
		log.WithField("endpoint", cfg.OTLPEndpoint).Info("OpenTelemetry initialized")
	}

	kv, err := openKV(cfg, log)
	if err != nil {
		return err
	}
	defer kv.Close()
	if err := kv.Initialize(ctx); err != nil {
		return errors.Wrapf(err, "initialize %s backend", cfg.KVBackend)
	}
	log.WithField("backend", cfg.KVBackend).Info("storage ready")

	publisher, err := openPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	store := cartstore.New(
		inventory.NewClient(cfg.InventoryURL, cfg.InventoryTimeout),
		kv,
		cartstore.WithKey(cfg.CartKey),
		cartstore.WithLogger(log),
		cartstore.WithPublisher(publisher),
	)
	if cart, err := store.Initialize(ctx); err != nil {
		// the store retries the load on the next operation
		log.WithError(err).Error("failed to load persisted cart")
	} else {
		log.WithFields(logrus.Fields{"key": cfg.CartKey, "lines": cart.Len()}).Info("cart loaded")
	}

	health := services.NewHealthCheckService(kv)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           services.NewRouter(serviceName, services.NewCartServiceServer(store), health, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthpb.RegisterHealthServer(grpcServer, health)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.AdminPort)
	if err != nil {
		return errors.Wrapf(err, "listen on :%s", cfg.AdminPort)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("cart API listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		log.Infof("admin gRPC server listening on %s", lis.Addr())
		return errors.Wrap(grpcServer.Serve(lis), "grpc server")
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		grpcServer.GracefulStop()
		return httpSrv.Shutdown(sctx)
	})
	return g.Wait()
}
