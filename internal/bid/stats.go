package bid

// JobBidStats aggregates the competitive landscape on one job.
type JobBidStats struct {
	BidCount         int     `json:"bid_count"`
	MeanAmount       float64 `json:"mean_amount"`
	MeanDeliveryDays float64 `json:"mean_delivery_days"`
}

// Summarize computes the aggregate statistics over every bid on a job,
// regardless of bid status. An empty slice yields the zero value.
func Summarize(bids []Bid) JobBidStats {
	s := JobBidStats{BidCount: len(bids)}
	if s.BidCount == 0 {
		return s
	}
	var amountSum, daysSum int64
	for _, b := range bids {
		amountSum += b.Amount
		daysSum += int64(b.DeliveryTimeDays)
	}
	s.MeanAmount = float64(amountSum) / float64(s.BidCount)
	s.MeanDeliveryDays = float64(daysSum) / float64(s.BidCount)
	return s
}

// GroupByJob buckets bids by their job id, preserving input order within each
// bucket.
func GroupByJob(bids []Bid) map[string][]Bid {
	grouped := make(map[string][]Bid)
	for _, b := range bids {
		grouped[b.JobID] = append(grouped[b.JobID], b)
	}
	return grouped
}
