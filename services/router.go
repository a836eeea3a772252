package services

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// NewRouter wires the cart API and the HTTP health check.
func NewRouter(serviceName string, cart *CartServiceServer, health *HealthCheckService, log logrus.FieldLogger) http.Handler {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware(serviceName))

	r.HandleFunc("/cart", cart.GetCart).Methods(http.MethodGet)
	r.HandleFunc("/cart/products/{id}", cart.AddProduct).Methods(http.MethodPost)
	r.HandleFunc("/cart/products/{id}", cart.RemoveProduct).Methods(http.MethodDelete)
	r.HandleFunc("/cart/products/{id}/amount", cart.UpdateProductAmount).Methods(http.MethodPut)
	r.Handle("/healthz", health).Methods(http.MethodGet)

	return &logHandler{log: log, next: r}
}
