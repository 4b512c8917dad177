package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/example/campus-match/internal/models"
	"github.com/example/campus-match/internal/notify"
	"github.com/example/campus-match/internal/storage"
)

var (
	eventsConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_events_consumed_total",
		Help: "Total notification events consumed",
	})
	eventsInvalid = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_events_invalid_total",
		Help: "Total invalid events received",
	})
	storeWrites = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_store_writes_total",
		Help: "Total notifications persisted",
	})
	storeErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_store_errors_total",
		Help: "Total persistence errors",
	})
)

func init() {
	prometheus.MustRegister(eventsConsumed, eventsInvalid, storeWrites, storeErrors)
}

func main() {
	// allow some flags for local runs
	var metricsAddr string
	flag.StringVar(&metricsAddr, "metrics-addr", ":2112", "address to serve prometheus metrics on")
	flag.Parse()

	brokers := []string{"localhost:9092"}
	if env := os.Getenv("KAFKA_BROKERS"); env != "" {
		brokers = brokers[:0]
		for _, b := range strings.Split(env, ",") {
			if s := strings.TrimSpace(b); s != "" {
				brokers = append(brokers, s)
			}
		}
	}
	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "notification-events"
	}
	group := os.Getenv("KAFKA_GROUP")
	if group == "" {
		group = "campus-match-notifier"
	}

	var store storage.NotificationStore
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		ps, err := storage.NewPostgresStore(dsn)
		if err != nil {
			log.Fatalf("postgres open error: %v", err)
		}
		defer ps.Close()
		store = ps
	} else {
		store = storage.NewMemoryStore()
	}

	// Unread badge counters live in redis so the gateway can read them
	// without hitting the database on every poll.
	var rc *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rc = redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
		defer rc.Close()
	}

	// start metrics and health server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
		mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			if rc != nil {
				if err := rc.Ping(r.Context()).Err(); err != nil {
					http.Error(w, "redis not ready", 503)
					return
				}
			}
			w.WriteHeader(200)
			w.Write([]byte("ready"))
		})
		log.Printf("metrics/health listening on %s", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := kafka.NewReader(kafka.ReaderConfig{Brokers: brokers, Topic: topic, GroupID: group, MinBytes: 10e3, MaxBytes: 10e6})
	defer r.Close()

	log.Printf("notifier listening topic=%s brokers=%v group=%s", topic, brokers, group)

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("shutting down notifier")
				return
			}
			log.Printf("kafka read error: %v; backing off %s", err, backoff)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		// reset backoff on success
		backoff = time.Second

		eventsConsumed.Inc()

		var ev notify.Event
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			eventsInvalid.Inc()
			log.Printf("invalid event: %v", err)
			continue
		}

		for _, n := range ev.Notifications() {
			rec := n
			if err := persistWithRetry(ctx, store, &rec, 3, 200*time.Millisecond); err != nil {
				storeErrors.Inc()
				log.Printf("persist failed for user=%s type=%s: %v", rec.UserID, rec.Type, err)
				continue
			}
			storeWrites.Inc()
			if rc != nil {
				if err := rc.Incr(ctx, "notif:unread:"+rec.UserID).Err(); err != nil {
					log.Printf("unread counter bump failed for user=%s: %v", rec.UserID, err)
				}
			}
		}
	}
}

// NotificationCreator is the slice of the store the notifier needs,
// small enough to fake in tests.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// persistWithRetry writes the notification with retry and backoff so a
// brief database hiccup does not drop user-visible messages.
func persistWithRetry(ctx context.Context, store NotificationCreator, n *models.Notification, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = store.CreateNotification(ctx, n); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
