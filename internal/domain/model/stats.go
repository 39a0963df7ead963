package model

// StatusStats aggregates orders sharing a status.
type StatusStats struct {
	Count int64
	Sum   int64
}

// Stats summarises all orders.
type Stats struct {
	Total    int64
	ByStatus map[OrderStatus]StatusStats
}

// Revenue is the amount of successful orders.
func (s Stats) Revenue() int64 {
	return s.ByStatus[OrderStatusSuccess].Sum
}
