package inventory

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// NewHandler serves a Memory catalog with the same layout Client expects.
func NewHandler(m *Memory, log logrus.FieldLogger) http.Handler {
	h := &handler{catalog: m, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", h.getProduct).Methods(http.MethodGet)
	r.HandleFunc("/stock/{id}", h.getStock).Methods(http.MethodGet)
	return r
}

type handler struct {
	catalog *Memory
	log     logrus.FieldLogger
}

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.log.WithError(err).Error("list products")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, products)
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	p, found := h.catalog.Product(id)
	if !found {
		h.writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *handler) getStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	stock, err := h.catalog.GetStock(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("product_id", id).Error("get stock")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, stock)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Warn("failed to write response")
	}
}
