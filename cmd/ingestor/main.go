package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"waste-whirl-api/config"
	"waste-whirl-api/services"
	"waste-whirl-api/storage"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// StatusPayload mirrors what the bin hardware posts: the ultrasonic sender
// reports full/empty, the RFID reader reports tag taps.
type StatusPayload struct {
	SensorID string `json:"sensor_id"`
	Status   *bool  `json:"status"`
}

type RFIDPayload struct {
	SensorID string `json:"sensor_id"`
	RFID     string `json:"rfid"`
}

type TelemetryPayload struct {
	TS         string  `json:"ts"`
	SensorID   string  `json:"sensor_id"`
	DistanceCM float64 `json:"distance_cm"`
}

var (
	msgsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastewhirl_ingestor_messages_received_total",
		Help: "Total number of MQTT messages received by the ingestor.",
	})
	msgsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastewhirl_ingestor_messages_applied_total",
		Help: "Total number of messages that resulted in a state change.",
	})
	msgsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastewhirl_ingestor_messages_rejected_total",
		Help: "Total number of messages rejected by transition preconditions.",
	})
	msgsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastewhirl_ingestor_messages_failed_total",
		Help: "Total number of malformed messages or persistence failures.",
	})
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("db handle failed: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("db ping failed: %v", err)
	}

	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		log.Printf("redis unavailable, live publish disabled: %v", err)
	}

	var notifier services.Notifier = services.NoopNotifier{}
	if cfg.Telegram.BotToken != "" {
		tn, err := services.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("telegram init failed, notifications disabled: %v", err)
		} else {
			notifier = tn
		}
	}

	ledger := services.NewLedgerService()
	settlement := services.NewSettlementService(ledger, cfg.Policy.PayoutAmount)
	bins := services.NewBinStateService(db, settlement, notifier, cache)

	var telemetry *storage.TelemetryWriter
	if cfg.Influx.URL != "" {
		telemetry = storage.NewTelemetryWriter(cfg.Influx)
		defer telemetry.Close()
		log.Printf("influx telemetry enabled: %s", cfg.Influx.URL)
	}

	go serveHTTP(cfg.MQTT.MetricsAddr)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTT.URL)
	opts.SetClientID("ingestor-" + time.Now().Format("20060102150405"))
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.OnConnect = func(client mqtt.Client) {
		subscribe(client, cfg.MQTT.StatusTopic, func(payload []byte) {
			handleStatus(ctx, bins, payload)
		})
		subscribe(client, cfg.MQTT.RFIDTopic, func(payload []byte) {
			handleRFID(ctx, bins, payload)
		})
		if telemetry != nil {
			subscribe(client, cfg.MQTT.TelemTopic, func(payload []byte) {
				handleTelemetry(ctx, telemetry, payload)
			})
		}
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("mqtt connection lost: %v", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if token.Error() != nil {
		log.Fatalf("mqtt connection failed: %v", token.Error())
	}

	log.Printf("ingestor running, mqtt=%s db=ok metrics=%s", cfg.MQTT.URL, cfg.MQTT.MetricsAddr)

	<-ctx.Done()
	log.Printf("ingestor shutting down")
	client.Disconnect(250)
	if cache != nil {
		cache.Close()
	}
}

func subscribe(client mqtt.Client, topic string, handle func(payload []byte)) {
	token := client.Subscribe(topic, 0, func(client mqtt.Client, message mqtt.Message) {
		handle(message.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		log.Printf("mqtt subscribe error for %s: %v", topic, token.Error())
		return
	}
	log.Printf("ingestor subscribed to topic=%s", topic)
}

func handleStatus(ctx context.Context, bins *services.BinStateService, payloadRaw []byte) {
	msgsReceived.Inc()

	var payload StatusPayload
	if err := json.Unmarshal(payloadRaw, &payload); err != nil {
		msgsFailed.Inc()
		log.Printf("invalid status payload: %v", err)
		return
	}
	if payload.SensorID == "" || payload.Status == nil {
		msgsFailed.Inc()
		log.Printf("missing required fields in status payload")
		return
	}

	_, _, err := bins.UpdateStatus(ctx, payload.SensorID, *payload.Status)
	if err != nil {
		if isRejection(err) {
			msgsRejected.Inc()
			log.Printf("status rejected for sensor=%s: %v", payload.SensorID, err)
		} else {
			msgsFailed.Inc()
			log.Printf("status update failed for sensor=%s: %v", payload.SensorID, err)
		}
		return
	}
	msgsApplied.Inc()
}

func handleRFID(ctx context.Context, bins *services.BinStateService, payloadRaw []byte) {
	msgsReceived.Inc()

	var payload RFIDPayload
	if err := json.Unmarshal(payloadRaw, &payload); err != nil {
		msgsFailed.Inc()
		log.Printf("invalid rfid payload: %v", err)
		return
	}
	if payload.SensorID == "" || payload.RFID == "" {
		msgsFailed.Inc()
		log.Printf("missing required fields in rfid payload")
		return
	}

	if _, err := bins.AttachRFID(ctx, payload.SensorID, payload.RFID); err != nil {
		if isRejection(err) {
			msgsRejected.Inc()
			log.Printf("rfid rejected for sensor=%s: %v", payload.SensorID, err)
		} else {
			msgsFailed.Inc()
			log.Printf("rfid attach failed for sensor=%s: %v", payload.SensorID, err)
		}
		return
	}
	msgsApplied.Inc()
}

func handleTelemetry(ctx context.Context, telemetry *storage.TelemetryWriter, payloadRaw []byte) {
	msgsReceived.Inc()

	var payload TelemetryPayload
	if err := json.Unmarshal(payloadRaw, &payload); err != nil {
		msgsFailed.Inc()
		log.Printf("invalid telemetry payload: %v", err)
		return
	}
	if payload.SensorID == "" {
		msgsFailed.Inc()
		log.Printf("missing sensor_id in telemetry payload")
		return
	}

	ts := time.Now().UTC()
	if payload.TS != "" {
		if parsed, err := time.Parse(time.RFC3339, payload.TS); err == nil {
			ts = parsed.UTC()
		}
	}

	if err := telemetry.WriteFillLevel(ctx, payload.SensorID, payload.DistanceCM, ts); err != nil {
		msgsFailed.Inc()
		log.Printf("telemetry write failed for sensor=%s: %v", payload.SensorID, err)
		return
	}
	msgsApplied.Inc()
}

// isRejection separates precondition rejections (expected under retries and
// out-of-order hardware signals) from real failures.
func isRejection(err error) bool {
	return errors.Is(err, services.ErrNotFound) ||
		errors.Is(err, services.ErrConflict) ||
		errors.Is(err, services.ErrPrecondition)
}

func serveHTTP(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("metrics server listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("metrics server failed: %v", err)
	}
}
