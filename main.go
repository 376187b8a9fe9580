package main

import (
	"embed"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spencer-p/tidecal/pkg/alerts"
	"github.com/spencer-p/tidecal/pkg/handlers"
	"github.com/spencer-p/tidecal/pkg/metrics"
)

//go:embed static
var content embed.FS

type Config struct {
	Port       string `default:"8080"`
	Prefix     string `default:"/"`
	WebhookURL string `envconfig:"WEBHOOK_URL"`
	AlertCron  string `envconfig:"ALERT_CRON" default:"0 * * * *"`
}

func main() {
	var env Config
	if err := envconfig.Process("", &env); err != nil {
		log.Fatal(err.Error())
	}

	r := mux.NewRouter().StrictSlash(true)
	s := r.PathPrefix(env.Prefix).Subrouter()
	handlers.Register(s, env.Prefix, content)
	r.Handle("/metrics", promhttp.Handler())

	var sender alerts.Sender = alerts.LogSender{}
	if env.WebhookURL != "" {
		sender = alerts.NewWebhookSender(env.WebhookURL)
	}
	notifier := alerts.New(handlers.DB(), sender)
	if _, err := notifier.StartCron(env.AlertCron); err != nil {
		log.Fatalf("Failed to schedule alert scan: %v", err)
	}

	srv := &http.Server{
		Handler:      metrics.LatencyHandler(r),
		Addr:         "0.0.0.0:" + env.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	log.Printf("Listening and serving on %s%s", srv.Addr, env.Prefix)
	log.Fatal(srv.ListenAndServe())
}
