package db

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Conn *pgxpool.Pool

// Init connects to Postgres and bootstraps the schema pieces this service owns.
func Init(dsn string) {
	var err error
	Conn, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}

	if err = Conn.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}

	log.Println("Connected to Postgres successfully")

	// Balance columns on users are mutated by settlement
	ensureBalanceColumns()

	ensureJobsTable()
	ensureBidsTable()
	ensurePaymentsTable()
	ensureChatTables()
	ensureNotificationsTable()
}

// ensureBalanceColumns adds users.money_earned / users.money_spent if missing.
// The users table itself belongs to the account directory and must already exist.
func ensureBalanceColumns() {
	ctx := context.Background()
	for _, col := range []string{"money_earned", "money_spent"} {
		var exists bool
		err := Conn.QueryRow(ctx, `
            SELECT EXISTS (
                SELECT 1 FROM information_schema.columns
                WHERE table_schema = 'public' AND table_name = 'users' AND column_name = $1
            )`, col).Scan(&exists)
		if err != nil {
			log.Printf("schema check failed: %v", err)
			return
		}
		if exists {
			continue
		}
		if _, err := Conn.Exec(ctx, `ALTER TABLE users ADD COLUMN IF NOT EXISTS `+col+` BIGINT DEFAULT 0`); err != nil {
			log.Printf("failed to add users.%s: %v", col, err)
			continue
		}
		_, _ = Conn.Exec(ctx, `UPDATE users SET `+col+` = 0 WHERE `+col+` IS NULL`)
		log.Printf("users.%s column ensured", col)
	}
}

func ensureJobsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS jobs (
            id UUID PRIMARY KEY,
            poster_id UUID NOT NULL REFERENCES users(id),
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            budget BIGINT NOT NULL CHECK (budget > 0),
            deadline_date TIMESTAMP WITH TIME ZONE NOT NULL,
            skills_required TEXT[] NOT NULL DEFAULT '{}',
            status TEXT NOT NULL DEFAULT 'open'
                CHECK (status IN ('open', 'in_progress', 'completed', 'canceled')),
            selected_bid_id UUID NULL,
            completed_at TIMESTAMP WITH TIME ZONE NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_jobs_poster ON jobs(poster_id);
        CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
    `)
	if err != nil {
		log.Printf("failed to create jobs table: %v", err)
	}
}

func ensureBidsTable() {
	ctx := context.Background()
	// The unique (job_id, freelancer_id) index is what makes duplicate-bid
	// detection race-safe; submit relies on the conflict, not a pre-check.
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS bids (
            id UUID PRIMARY KEY,
            job_id UUID NOT NULL REFERENCES jobs(id),
            freelancer_id UUID NOT NULL REFERENCES users(id),
            amount BIGINT NOT NULL CHECK (amount > 0),
            delivery_time_days INTEGER NOT NULL CHECK (delivery_time_days > 0),
            proposal TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending'
                CHECK (status IN ('pending', 'accepted', 'rejected')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE UNIQUE INDEX IF NOT EXISTS idx_bids_job_freelancer ON bids(job_id, freelancer_id);
        CREATE INDEX IF NOT EXISTS idx_bids_freelancer ON bids(freelancer_id);
    `)
	if err != nil {
		log.Printf("failed to create bids table: %v", err)
	}
}

func ensurePaymentsTable() {
	ctx := context.Background()
	// Unique job_id is the backstop against double settlement.
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS payments (
            id UUID PRIMARY KEY,
            job_id UUID NOT NULL UNIQUE REFERENCES jobs(id),
            bid_id UUID NOT NULL REFERENCES bids(id),
            amount BIGINT NOT NULL,
            from_id UUID NOT NULL REFERENCES users(id),
            to_id UUID NOT NULL REFERENCES users(id),
            status TEXT NOT NULL DEFAULT 'completed'
                CHECK (status IN ('pending', 'completed', 'refunded')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_payments_from ON payments(from_id);
        CREATE INDEX IF NOT EXISTS idx_payments_to ON payments(to_id);
    `)
	if err != nil {
		log.Printf("failed to create payments table: %v", err)
	}
}

func ensureChatTables() {
	ctx := context.Background()
	// One chat per (job, freelancer); the poster side is determined by the job.
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS chats (
            id UUID PRIMARY KEY,
            job_id UUID NOT NULL REFERENCES jobs(id),
            poster_id UUID NOT NULL REFERENCES users(id),
            freelancer_id UUID NOT NULL REFERENCES users(id),
            last_activity TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE UNIQUE INDEX IF NOT EXISTS idx_chats_job_freelancer ON chats(job_id, freelancer_id);
        CREATE INDEX IF NOT EXISTS idx_chats_poster ON chats(poster_id);
        CREATE INDEX IF NOT EXISTS idx_chats_freelancer ON chats(freelancer_id);
    `)
	if err != nil {
		log.Printf("failed to create chats table: %v", err)
	}

	// sender_id is TEXT rather than a users FK so acceptance system messages
	// can carry the reserved sender "system".
	_, err = Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS messages (
            id UUID PRIMARY KEY,
            chat_id UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
            sender_id TEXT NOT NULL,
            content TEXT NOT NULL,
            read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages(chat_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_messages_chat_unread ON messages(chat_id) WHERE read = FALSE;
    `)
	if err != nil {
		log.Printf("failed to create messages table: %v", err)
	}
}

// ensureNotificationsTable creates notifications table if it doesn't exist
func ensureNotificationsTable() {
	ctx := context.Background()
	var exists bool
	_ = Conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM information_schema.tables
            WHERE table_schema = 'public' AND table_name = 'notifications'
        )`).Scan(&exists)
	if exists {
		return
	}
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            type TEXT NOT NULL,
            title TEXT NOT NULL,
            body TEXT,
            reference UUID NULL,
            metadata JSONB NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            read_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE read_at IS NULL;
    `)
	if err != nil {
		log.Printf("failed to create notifications table: %v", err)
	}
}
