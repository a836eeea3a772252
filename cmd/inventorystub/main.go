// inventorystub serves a fixed product catalog and stock table over HTTP for
// local development of the cart service.
package main

import (
	"bytes"
	"context"
	_ "embed"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rocketshoes/cartservice/inventory"
	"github.com/rocketshoes/cartservice/logging"
)

//go:embed db.json
var defaultSeed []byte

func main() {
	_ = godotenv.Load()
	log := logging.New(os.Getenv("LOG_LEVEL"))

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}

	seed, err := openSeed(os.Getenv("INVENTORY_SEED"))
	if err != nil {
		log.Fatal(err)
	}
	defer seed.Close()

	catalog, err := inventory.LoadSeed(seed)
	if err != nil {
		log.Fatal(err)
	}
	products, _ := catalog.ListProducts(context.Background())
	log.WithField("products", len(products)).Info("catalog loaded")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           otelhttp.NewHandler(inventory.NewHandler(catalog, log), "inventorystub"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.Infof("inventory stub listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func openSeed(path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(bytes.NewReader(defaultSeed)), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open INVENTORY_SEED")
	}
	return f, nil
}
