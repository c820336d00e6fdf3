package alerts

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/hibiken/asynq"
)

var (
	client *asynq.Client
	server *asynq.Server
)

func redisAddr() string {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		if host := os.Getenv("REDIS_HOST"); host != "" {
			port := os.Getenv("REDIS_PORT")
			if port == "" {
				port = "6379"
			}
			addr = host + ":" + port
		} else {
			addr = "127.0.0.1:6379"
		}
	}
	return addr
}

// InitClient sets up the enqueue side only. The server process uses this.
func InitClient() {
	client = asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr()})
	log.Printf("Asynq client initialized (addr=%s)", redisAddr())
}

// RunWorker starts the Asynq server and blocks until it stops. The worker
// process uses this.
func RunWorker() error {
	opts := asynq.RedisClientOpt{Addr: redisAddr()}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskBidReceived, handleBidReceived)
	mux.HandleFunc(TaskBidAccepted, handleBidAccepted)
	mux.HandleFunc(TaskBidRejected, handleBidRejected)
	mux.HandleFunc(TaskJobCompleted, handleJobCompleted)
	mux.HandleFunc(TaskMessageNew, handleMessageNew)

	server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"emails": 10,
		},
	})
	return server.Run(mux)
}

// Close releases client and stops server.
func Close() {
	if client != nil {
		_ = client.Close()
	}
	if server != nil {
		server.Shutdown()
	}
}

// Handlers below parse payloads and hand them to the mailer.

func handleBidReceived(_ context.Context, t *asynq.Task) error {
	var p BidReceivedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] BidReceived send failed: %v", err)
		return err
	}
	log.Printf("[notify] BidReceived sent -> job=%s to=%s", p.JobID, p.Email)
	return nil
}

func handleBidAccepted(_ context.Context, t *asynq.Task) error {
	var p BidAcceptedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] BidAccepted send failed: %v", err)
		return err
	}
	log.Printf("[notify] BidAccepted sent -> bid=%s to=%s", p.BidID, p.Email)
	return nil
}

func handleBidRejected(_ context.Context, t *asynq.Task) error {
	var p BidRejectedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] BidRejected send failed: %v", err)
		return err
	}
	log.Printf("[notify] BidRejected sent -> job=%s to=%s", p.JobID, p.Email)
	return nil
}

func handleJobCompleted(_ context.Context, t *asynq.Task) error {
	var p JobCompletedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] JobCompleted send failed: %v", err)
		return err
	}
	log.Printf("[notify] JobCompleted sent -> payment=%s to=%s", p.PaymentID, p.Email)
	return nil
}

func handleMessageNew(_ context.Context, t *asynq.Task) error {
	var p MessageNewPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] MessageNew send failed: %v", err)
		return err
	}
	log.Printf("[notify] MessageNew sent -> job=%s to=%s", p.JobID, p.Email)
	return nil
}
