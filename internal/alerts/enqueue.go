package alerts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// ensureClient returns a usable client instance
func ensureClient() *asynq.Client {
	if client == nil {
		InitClient()
	}
	return client
}

func enqueue(taskType string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	task := asynq.NewTask(taskType, b)
	_, err = ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueBidReceived notifies a poster that a freelancer bid on their job
func EnqueueBidReceived(jobID, bidID, posterID, posterEmail string, amount int64) error {
	env := EmailEnvelope{
		To:      posterEmail,
		Subject: "New bid on your job",
		Body:    fmt.Sprintf("A freelancer placed a bid of %d on your job %s. Review it in your dashboard.", amount, jobID),
	}
	return enqueue(TaskBidReceived, BidReceivedPayload{
		JobID: jobID, BidID: bidID, PosterID: posterID, Email: posterEmail,
		Amount: amount, Envelope: env, SentAt: time.Now(),
	})
}

// EnqueueBidAccepted notifies the winning freelancer
func EnqueueBidAccepted(jobID, bidID, freelancerID, email string, amount int64) error {
	env := EmailEnvelope{
		To:      email,
		Subject: "Your bid was accepted",
		Body:    fmt.Sprintf("Congratulations, your bid of %d on job %s was accepted. The job chat is now open.", amount, jobID),
	}
	return enqueue(TaskBidAccepted, BidAcceptedPayload{
		JobID: jobID, BidID: bidID, FreelancerID: freelancerID, Email: email,
		Amount: amount, Envelope: env, SentAt: time.Now(),
	})
}

// EnqueueBidRejected notifies a passed-over freelancer
func EnqueueBidRejected(jobID, freelancerID, email string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: "Your bid was not selected",
		Body:    fmt.Sprintf("Your bid on job %s was not selected this time.", jobID),
	}
	return enqueue(TaskBidRejected, BidRejectedPayload{
		JobID: jobID, FreelancerID: freelancerID, Email: email,
		Envelope: env, SentAt: time.Now(),
	})
}

// EnqueueJobCompleted sends the payment receipt to one party.
// isRecipient selects the freelancer (payee) wording over the poster's.
func EnqueueJobCompleted(jobID, paymentID, userID, email string, amount int64, isRecipient bool) error {
	subject := "Payment sent for your completed job"
	body := fmt.Sprintf("Job %s is complete. A payment of %d has been recorded against your account.", jobID, amount)
	if isRecipient {
		subject = "You have been paid"
		body = fmt.Sprintf("Job %s is complete. A payment of %d has been credited to your earnings.", jobID, amount)
	}
	env := EmailEnvelope{To: email, Subject: subject, Body: body}
	return enqueue(TaskJobCompleted, JobCompletedPayload{
		JobID: jobID, PaymentID: paymentID, UserID: userID, Email: email,
		Amount: amount, IsRecipient: isRecipient, Envelope: env, SentAt: time.Now(),
	})
}

// EnqueueMessageNew notifies the other chat participant
func EnqueueMessageNew(jobID, senderID, recipientID, email, body string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: "New message on your job chat",
		Body:    body,
	}
	return enqueue(TaskMessageNew, MessageNewPayload{
		JobID: jobID, SenderID: senderID, Recipient: recipientID, Email: email,
		Body: body, Envelope: env, SentAt: time.Now(),
	})
}
