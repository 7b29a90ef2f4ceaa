package observability

// Metric name prefixes
const (
	MetricPrefix = "lotto"
)

// Metric names
const (
	TicketsPurchasedTotal    = MetricPrefix + ".tickets.purchased_total"
	TicketStakeTotal         = MetricPrefix + ".tickets.stake_total"
	PrizesClaimedTotal       = MetricPrefix + ".tickets.claimed_total"
	DrawsSettledTotal        = MetricPrefix + ".draws.settled_total"
	PrizesPaidTotal          = MetricPrefix + ".draws.prizes_paid_total"
	BalanceTransactionsTotal = MetricPrefix + ".balance.transactions_total"
	UsersCreatedTotal        = MetricPrefix + ".users.created_total"
	NATSMessagesPublished    = MetricPrefix + ".nats.messages_published_total"
	SchedulerTicksTotal      = MetricPrefix + ".scheduler.ticks_total"
)

// Label keys
const (
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelOutcome   = "outcome"
)

// Scheduler tick outcomes
const (
	OutcomeIdle    = "idle"
	OutcomeSettled = "settled"
	OutcomeFailed  = "failed"
)
