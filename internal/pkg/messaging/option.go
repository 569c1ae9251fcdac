package messaging

// consumeOptions holds the per-broker names of a durable consumer. Each
// backend reads only the field it understands.
type consumeOptions struct {
	concurrency  int
	maxInFlight  int
	group        string // Kafka consumer group
	channel      string // NSQ channel
	queueGroup   string // NATS queue group
	subscription string // Google Pub/Sub subscription
}

type ConsumeOption func(*consumeOptions)

func newConsumeOptions(opts ...ConsumeOption) consumeOptions {
	var co consumeOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}
	return co
}

// WithConsumerName uses name as the group, channel, queue group and
// subscription, so one logical consumer keeps its identity across brokers.
// Options given after it override single fields.
func WithConsumerName(name string) ConsumeOption {
	return func(o *consumeOptions) {
		o.group, o.channel, o.queueGroup, o.subscription = name, name, name, name
	}
}

// WithConcurrency sets how many handler goroutines process messages in parallel.
func WithConcurrency(n int) ConsumeOption {
	return func(o *consumeOptions) { o.concurrency = n }
}

// WithMaxInFlight limits unacknowledged messages (NSQ, Pub/Sub).
func WithMaxInFlight(maxInFlight int) ConsumeOption {
	return func(o *consumeOptions) { o.maxInFlight = maxInFlight }
}

func WithGroup(group string) ConsumeOption {
	return func(o *consumeOptions) { o.group = group }
}

func WithChannel(channel string) ConsumeOption {
	return func(o *consumeOptions) { o.channel = channel }
}

func WithQueueGroup(queueGroup string) ConsumeOption {
	return func(o *consumeOptions) { o.queueGroup = queueGroup }
}

func WithSubscription(subscription string) ConsumeOption {
	return func(o *consumeOptions) { o.subscription = subscription }
}
