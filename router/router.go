package router

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	handler "github.com/attachsizer/handler/v1/attachments"
	"github.com/attachsizer/model"
	"github.com/attachsizer/resolver"
)

const requestIDHeader = "X-Request-ID"

// New returns new router.
func New(repo model.AttachmentsRepository, res *resolver.Resolver, log *zap.Logger) *mux.Router {
	if log == nil {
		log = zap.NewNop()
	}
	router := mux.NewRouter()
	router.Use(requestLogger(log))

	svcV1 := handler.NewService(repo, res, log)

	apiV1 := router.PathPrefix("/api/v1").Subrouter()

	apiV1.HandleFunc("/attachments", svcV1.Batch).Methods("GET")
	apiV1.HandleFunc("/attachments/{id:[0-9]+}/src", svcV1.Src).Methods("GET")
	apiV1.HandleFunc("/attachments/{id:[0-9]+}/intermediate", svcV1.Intermediate).Methods("GET")
	apiV1.HandleFunc("/attachments/{id:[0-9]+}/sizes", svcV1.Sizes).Methods("GET")
	apiV1.HandleFunc("/select", svcV1.Select).Methods("POST")
	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger tags every request with an id and logs its outcome.
func requestLogger(log *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.Debug("request served",
				zap.String("request_id", id),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("took", time.Since(start)))
		})
	}
}
