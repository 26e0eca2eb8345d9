package watch_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/tagreload/internal/watch"
	"github.com/nicholas-fedor/tagreload/pkg/types"
)

// subscription is one scripted StreamEvents result.
type subscription struct {
	events chan types.TagEvent
	errs   chan error
}

func newSubscription() subscription {
	return subscription{events: make(chan types.TagEvent), errs: make(chan error, 1)}
}

// streamClient serves scripted subscriptions in order; only StreamEvents is used.
type streamClient struct {
	types.Client

	mu            sync.Mutex
	subscriptions []subscription
	subscribed    int
}

func (c *streamClient) StreamEvents(_ context.Context) (<-chan types.TagEvent, <-chan error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := c.subscriptions[c.subscribed]
	c.subscribed++

	return sub.events, sub.errs
}

func (c *streamClient) Subscribed() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.subscribed
}

func tag(reference string) types.TagEvent {
	return types.TagEvent{Action: types.ActionTag, ImageReference: reference}
}

var _ = ginkgo.Describe("the watcher", func() {
	var handled chan types.TagEvent
	var handler watch.Handler

	ginkgo.BeforeEach(func() {
		handled = make(chan types.TagEvent, 10)
		handler = func(_ context.Context, event types.TagEvent) error {
			handled <- event

			return nil
		}
	})

	ginkgo.It("should hand tag events to the handler in order and ignore other actions", func() {
		sub := newSubscription()
		client := &streamClient{subscriptions: []subscription{sub}}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- watch.New(client, handler).Run(ctx) }()

		sub.events <- tag("first:latest")
		sub.events <- types.TagEvent{Action: "untag", ImageReference: "ignored:latest"}
		sub.events <- tag("second:latest")

		gomega.Eventually(handled).Should(gomega.Receive(gomega.Equal(tag("first:latest"))))
		gomega.Eventually(handled).Should(gomega.Receive(gomega.Equal(tag("second:latest"))))
		gomega.Consistently(handled, 50*time.Millisecond).ShouldNot(gomega.Receive())

		cancel()
		gomega.Eventually(done).Should(gomega.Receive(gomega.BeNil()))
	})

	ginkgo.It("should keep running after a handler error or panic", func() {
		sub := newSubscription()
		client := &streamClient{subscriptions: []subscription{sub}}
		calls := 0
		failing := func(_ context.Context, event types.TagEvent) error {
			calls++
			switch calls {
			case 1:
				return errors.New("reconciliation failed")
			case 2:
				panic("unexpected")
			}
			handled <- event

			return nil
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- watch.New(client, failing).Run(ctx) }()

		sub.events <- tag("one:latest")
		sub.events <- tag("two:latest")
		sub.events <- tag("three:latest")

		gomega.Eventually(handled).Should(gomega.Receive(gomega.Equal(tag("three:latest"))))

		cancel()
		gomega.Eventually(done).Should(gomega.Receive(gomega.BeNil()))
	})

	ginkgo.It("should finish an in-flight event after cancellation", func() {
		sub := newSubscription()
		client := &streamClient{subscriptions: []subscription{sub}}
		ctx, cancel := context.WithCancel(context.Background())
		release := make(chan struct{})
		var handlerCtxErr error
		blocking := func(hctx context.Context, event types.TagEvent) error {
			<-release
			handlerCtxErr = hctx.Err()
			handled <- event

			return nil
		}

		done := make(chan error, 1)
		go func() { done <- watch.New(client, blocking).Run(ctx) }()

		sub.events <- tag("slow:latest")
		cancel()
		gomega.Consistently(done, 50*time.Millisecond).ShouldNot(gomega.Receive())

		close(release)
		gomega.Eventually(handled).Should(gomega.Receive())
		gomega.Eventually(done).Should(gomega.Receive(gomega.BeNil()))
		gomega.Expect(handlerCtxErr).ToNot(gomega.HaveOccurred())
	})

	ginkgo.It("should re-subscribe after the stream breaks", func() {
		first, second := newSubscription(), newSubscription()
		client := &streamClient{subscriptions: []subscription{first, second}}
		reconnects := make(chan struct{}, 2)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		watcher := watch.New(client, handler,
			watch.WithBackOff(&backoff.ZeroBackOff{}),
			watch.WithReconnectHook(func() { reconnects <- struct{}{} }),
		)

		done := make(chan error, 1)
		go func() { done <- watcher.Run(ctx) }()

		first.errs <- io.EOF
		gomega.Eventually(reconnects).Should(gomega.Receive())
		gomega.Eventually(client.Subscribed).Should(gomega.Equal(2))

		second.events <- tag("after:latest")
		gomega.Eventually(handled).Should(gomega.Receive(gomega.Equal(tag("after:latest"))))

		cancel()
		gomega.Eventually(done).Should(gomega.Receive(gomega.BeNil()))
	})

	ginkgo.It("should give up when the reconnect policy stops", func() {
		first, second := newSubscription(), newSubscription()
		client := &streamClient{subscriptions: []subscription{first, second}}

		first.errs <- io.EOF
		close(second.events)
		close(second.errs)

		watcher := watch.New(client, handler,
			watch.WithBackOff(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 1)))

		err := watcher.Run(context.Background())
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("gave up reconnecting")))
		gomega.Expect(client.Subscribed()).To(gomega.Equal(2))
	})

	ginkgo.It("should not count a quiet healthy stream against the reconnect limit", func() {
		first, second := newSubscription(), newSubscription()
		client := &streamClient{subscriptions: []subscription{first, second}}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		watcher := watch.New(client, handler, watch.WithReconnectLimit(300*time.Millisecond))

		done := make(chan error, 1)
		go func() { done <- watcher.Run(ctx) }()

		gomega.Consistently(done, 600*time.Millisecond).ShouldNot(gomega.Receive())

		first.errs <- io.EOF
		gomega.Eventually(client.Subscribed).Should(gomega.Equal(2))

		second.events <- tag("after:latest")
		gomega.Eventually(handled).Should(gomega.Receive(gomega.Equal(tag("after:latest"))))

		cancel()
		gomega.Eventually(done).Should(gomega.Receive(gomega.BeNil()))
	})

	ginkgo.It("should give up once reconnecting takes longer than the limit", func() {
		subscriptions := make([]subscription, 0, 3)
		for range 3 {
			sub := newSubscription()
			sub.errs <- io.EOF
			subscriptions = append(subscriptions, sub)
		}

		client := &streamClient{subscriptions: subscriptions}
		watcher := watch.New(client, handler, watch.WithReconnectLimit(50*time.Millisecond))

		err := watcher.Run(context.Background())
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("gave up reconnecting")))
		gomega.Expect(client.Subscribed()).To(gomega.Equal(2))
	})
})

var _ = ginkgo.Describe("the run reloads on events function", func() {
	ginkgo.It("should close the notifier and return nil on cancellation", func() {
		sub := newSubscription()
		client := &streamClient{subscriptions: []subscription{sub}}
		notifier := &closingNotifier{}
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- watch.RunReloadsOnEvents(ctx, watch.New(client, func(context.Context, types.TagEvent) error {
				return nil
			}), notifier)
		}()

		gomega.Eventually(client.Subscribed).Should(gomega.Equal(1))
		cancel()
		gomega.Eventually(done).Should(gomega.Receive(gomega.BeNil()))
		gomega.Expect(notifier.closed).To(gomega.BeTrue())
	})
})

type closingNotifier struct {
	closed bool
}

func (n *closingNotifier) SendReload(types.ReloadReport) {}
func (n *closingNotifier) GetNames() []string           { return nil }
func (n *closingNotifier) Close()                       { n.closed = true }
