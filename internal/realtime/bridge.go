package realtime

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// The bridge mirrors hub broadcasts across instances through Redis pub/sub.
// Without it (single-instance deployments) everything still works locally.

const channelPrefix = "job_chat:"

type envelope struct {
	Origin  string          `json:"origin"`
	JobID   string          `json:"job_id"`
	Payload json.RawMessage `json:"payload"`
}

var (
	bridgeMu   sync.RWMutex
	bridgeRdb  *redis.Client
	instanceID = uuid.New().String()
)

// InitBridge connects the hub registry to Redis pub/sub and starts the
// subscriber loop. Call once at startup; ctx cancellation stops the loop.
func InitBridge(ctx context.Context, rdb *redis.Client) {
	bridgeMu.Lock()
	bridgeRdb = rdb
	bridgeMu.Unlock()

	sub := rdb.PSubscribe(ctx, channelPrefix+"*")
	go func() {
		defer sub.Close()
		for msg := range sub.Channel() {
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("[realtime] bad bridge payload on %s: %v", msg.Channel, err)
				continue
			}
			if env.Origin == instanceID {
				continue // our own publish echoed back
			}
			jobID := env.JobID
			if jobID == "" {
				jobID = strings.TrimPrefix(msg.Channel, channelPrefix)
			}
			getHub(jobID).broadcast(env.Payload)
		}
	}()
	log.Println("[realtime] Redis bridge started")
}

func publishRemote(jobID string, payload []byte) {
	bridgeMu.RLock()
	rdb := bridgeRdb
	bridgeMu.RUnlock()
	if rdb == nil {
		return
	}
	env, err := json.Marshal(envelope{Origin: instanceID, JobID: jobID, Payload: payload})
	if err != nil {
		return
	}
	if err := rdb.Publish(context.Background(), channelPrefix+jobID, env).Err(); err != nil {
		log.Printf("[realtime] bridge publish failed for job %s: %v", jobID, err)
	}
}
