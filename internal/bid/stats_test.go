package bid

import "testing"

func TestSummarize(t *testing.T) {
	t.Run("empty slice yields zero value", func(t *testing.T) {
		s := Summarize(nil)
		if s.BidCount != 0 || s.MeanAmount != 0 || s.MeanDeliveryDays != 0 {
			t.Errorf("Summarize(nil) = %+v, want zero value", s)
		}
	})

	t.Run("means over all statuses", func(t *testing.T) {
		bids := []Bid{
			{Amount: 1000, DeliveryTimeDays: 2, Status: StatusPending},
			{Amount: 2000, DeliveryTimeDays: 4, Status: StatusRejected},
			{Amount: 3000, DeliveryTimeDays: 6, Status: StatusAccepted},
		}
		s := Summarize(bids)
		if s.BidCount != 3 {
			t.Errorf("BidCount = %d, want 3", s.BidCount)
		}
		if s.MeanAmount != 2000 {
			t.Errorf("MeanAmount = %v, want 2000", s.MeanAmount)
		}
		if s.MeanDeliveryDays != 4 {
			t.Errorf("MeanDeliveryDays = %v, want 4", s.MeanDeliveryDays)
		}
	})

	t.Run("non-integer mean", func(t *testing.T) {
		bids := []Bid{
			{Amount: 100, DeliveryTimeDays: 1},
			{Amount: 101, DeliveryTimeDays: 2},
		}
		s := Summarize(bids)
		if s.MeanAmount != 100.5 {
			t.Errorf("MeanAmount = %v, want 100.5", s.MeanAmount)
		}
		if s.MeanDeliveryDays != 1.5 {
			t.Errorf("MeanDeliveryDays = %v, want 1.5", s.MeanDeliveryDays)
		}
	})
}

func TestGroupByJob(t *testing.T) {
	bids := []Bid{
		{ID: "b1", JobID: "j1"},
		{ID: "b2", JobID: "j2"},
		{ID: "b3", JobID: "j1"},
	}
	grouped := GroupByJob(bids)
	if len(grouped) != 2 {
		t.Fatalf("got %d groups, want 2", len(grouped))
	}
	j1 := grouped["j1"]
	if len(j1) != 2 || j1[0].ID != "b1" || j1[1].ID != "b3" {
		t.Errorf("j1 group = %v, want [b1 b3] in input order", j1)
	}
	if len(grouped["j2"]) != 1 {
		t.Errorf("j2 group = %v, want one bid", grouped["j2"])
	}
	if len(GroupByJob(nil)) != 0 {
		t.Error("GroupByJob(nil) should be empty")
	}
}
