package mqtt

// FakeClient records subscriptions and lets tests inject messages.
type FakeClient struct {
	// Filters contains every filter passed to Subscribe.
	Filters []string

	// SubscribeError, if set, will be returned by Subscribe.
	SubscribeError error

	// Connected controls the return value of IsConnected.
	Connected bool

	// Closed tracks if Close was called.
	Closed bool

	handlers []Handler
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{Connected: true}
}

// Subscribe records the filter and handler.
func (f *FakeClient) Subscribe(filter string, h Handler) error {
	if f.SubscribeError != nil {
		return f.SubscribeError
	}
	f.Filters = append(f.Filters, filter)
	f.handlers = append(f.handlers, h)
	return nil
}

// Inject delivers a message to every registered handler, as the broker
// would.
func (f *FakeClient) Inject(topic string, payload []byte) {
	for _, h := range f.handlers {
		h(Message{Topic: topic, Payload: payload})
	}
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	return f.Connected
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.Closed = true
	return nil
}
