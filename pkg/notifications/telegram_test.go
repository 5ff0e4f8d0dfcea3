package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nicholas-fedor/backupnotify/pkg/metrics"
	"github.com/nicholas-fedor/backupnotify/pkg/notifications"
	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

// recordedRequest is what the fake Bot API saw for one call.
type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        string
}

// fakeTelegram is an httptest server answering sendMessage calls with scripted status codes.
// The last status is repeated once the script runs out.
type fakeTelegram struct {
	mu       sync.Mutex
	statuses []int
	requests []recordedRequest
	received chan struct{}
	server   *httptest.Server
}

func newFakeTelegram(statuses ...int) *fakeTelegram {
	fake := &fakeTelegram{statuses: statuses, received: make(chan struct{}, 64)}
	fake.server = httptest.NewServer(http.HandlerFunc(fake.handle))

	return fake
}

func (f *fakeTelegram) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		Body:        string(body),
	})

	status := http.StatusOK
	if len(f.statuses) > 0 {
		status = f.statuses[0]
		if len(f.statuses) > 1 {
			f.statuses = f.statuses[1:]
		}
	}
	f.mu.Unlock()

	select {
	case f.received <- struct{}{}:
	default:
	}

	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"ok":` + map[bool]string{true: "true", false: "false"}[status == http.StatusOK] + `}`))
}

func (f *fakeTelegram) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakeTelegram) Close() {
	f.server.Close()
}

// clientFunc adapts a function to notifications.HTTPClient.
type clientFunc func(*http.Request) (*http.Response, error)

func (f clientFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testConfig() notifications.Config {
	config := notifications.DefaultConfig()
	config.BotToken = "bot_api_token"
	config.ChatID = "chatpublicname"
	config.RetryWait = 0

	return config
}

func newTestNotifier(fake *fakeTelegram, config notifications.Config, opts ...notifications.Option) *notifications.TelegramNotifier {
	notifier, err := notifications.NewTelegramNotifier(
		config,
		append([]notifications.Option{notifications.WithBaseURL(fake.server.URL)}, opts...)...,
	)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	return notifier
}

var testOutcome = types.Outcome{Status: types.StatusSuccess, Trigger: "test_trigger", Label: "test label"}

const expectedFormPrefix = "chat_id=chatpublicname&text=%5BBackup%3A%3A"

const expectedFormSuffix = "%5D+test+label+%28test_trigger%29"

var _ = ginkgo.Describe("the telegram notifier", func() {
	var fake *fakeTelegram

	ginkgo.AfterEach(func() {
		if fake != nil {
			fake.Close()
		}
	})

	ginkgo.Describe("construction", func() {
		ginkgo.It("uses the documented defaults", func() {
			config := notifications.DefaultConfig()
			gomega.Expect(config.BotToken).To(gomega.BeEmpty())
			gomega.Expect(config.ChatID).To(gomega.BeEmpty())
			gomega.Expect(config.OnSuccess).To(gomega.BeTrue())
			gomega.Expect(config.OnWarning).To(gomega.BeTrue())
			gomega.Expect(config.OnFailure).To(gomega.BeTrue())
			gomega.Expect(config.MaxRetries).To(gomega.Equal(10))
			gomega.Expect(config.RetryWait).To(gomega.Equal(30 * time.Second))
		})

		ginkgo.DescribeTable("rejects unusable configurations",
			func(mutate func(*notifications.Config), message string) {
				config := testConfig()
				mutate(&config)

				notifier, err := notifications.NewTelegramNotifier(config)
				gomega.Expect(notifier).To(gomega.BeNil())
				gomega.Expect(err).To(gomega.MatchError(notifications.ErrConfiguration))
				gomega.Expect(err.Error()).To(gomega.ContainSubstring(message))
			},
			ginkgo.Entry("missing token", func(c *notifications.Config) { c.BotToken = "" }, "bot token"),
			ginkgo.Entry("missing chat", func(c *notifications.Config) { c.ChatID = "" }, "chat id"),
			ginkgo.Entry("negative retries", func(c *notifications.Config) { c.MaxRetries = -1 }, "max retries"),
			ginkgo.Entry("negative wait", func(c *notifications.Config) { c.RetryWait = -time.Second }, "retry wait"),
		)

		ginkgo.It("builds the Bot API endpoint from the token", func() {
			notifier, err := notifications.NewTelegramNotifier(testConfig())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(notifier.Endpoint()).To(gomega.Equal("https://api.telegram.org/botbot_api_token/sendMessage"))
			gomega.Expect(notifier.GetName()).To(gomega.Equal("telegram"))
		})

		ginkgo.It("keeps its own copy of the configuration", func() {
			config := testConfig()
			notifier, err := notifications.NewTelegramNotifier(config)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			config.ChatID = "changed"
			gomega.Expect(notifier.Config().ChatID).To(gomega.Equal("chatpublicname"))
		})
	})

	ginkgo.Describe("delivery", func() {
		ginkgo.DescribeTable("posts the form encoded message",
			func(status types.Status, word string) {
				fake = newFakeTelegram(http.StatusOK)
				notifier := newTestNotifier(fake, testConfig())

				outcome := testOutcome
				outcome.Status = status
				gomega.Expect(notifier.Notify(context.Background(), outcome)).To(gomega.Succeed())

				requests := fake.Requests()
				gomega.Expect(requests).To(gomega.HaveLen(1))
				gomega.Expect(requests[0].Method).To(gomega.Equal(http.MethodPost))
				gomega.Expect(requests[0].Path).To(gomega.Equal("/botbot_api_token/sendMessage"))
				gomega.Expect(requests[0].ContentType).To(gomega.Equal("application/x-www-form-urlencoded"))
				gomega.Expect(requests[0].Body).To(gomega.Equal(expectedFormPrefix + word + expectedFormSuffix))
			},
			ginkgo.Entry("success", types.StatusSuccess, "Success"),
			ginkgo.Entry("warning", types.StatusWarning, "Warning"),
			ginkgo.Entry("failure", types.StatusFailure, "Failure"),
		)

		ginkgo.It("sends the optional parameters when provided", func() {
			fake = newFakeTelegram(http.StatusOK)
			config := testConfig()
			config.MessageThreadID = "12345"
			config.DisableNotification = true
			notifier := newTestNotifier(fake, config)

			gomega.Expect(notifier.Notify(context.Background(), testOutcome)).To(gomega.Succeed())
			gomega.Expect(fake.Requests()[0].Body).To(gomega.Equal(
				expectedFormPrefix + "Success" + expectedFormSuffix +
					"&message_thread_id=12345&disable_notification=true",
			))
		})

		ginkgo.It("produces byte-identical bodies for repeated deliveries", func() {
			fake = newFakeTelegram(http.StatusOK)
			notifier := newTestNotifier(fake, testConfig())

			for range 3 {
				gomega.Expect(notifier.Notify(context.Background(), testOutcome)).To(gomega.Succeed())
			}

			requests := fake.Requests()
			gomega.Expect(requests).To(gomega.HaveLen(3))
			gomega.Expect(requests[1].Body).To(gomega.Equal(requests[0].Body))
			gomega.Expect(requests[2].Body).To(gomega.Equal(requests[0].Body))
		})

		ginkgo.It("makes exactly one call when the first attempt succeeds without retries", func() {
			fake = newFakeTelegram(http.StatusOK)
			config := testConfig()
			config.MaxRetries = 0
			notifier := newTestNotifier(fake, config)

			gomega.Expect(notifier.Notify(context.Background(), testOutcome)).To(gomega.Succeed())
			gomega.Expect(fake.Requests()).To(gomega.HaveLen(1))
		})

		ginkgo.It("supports concurrent notifications", func() {
			fake = newFakeTelegram(http.StatusOK)
			notifier := newTestNotifier(fake, testConfig())

			var wg sync.WaitGroup

			errs := make(chan error, 10)

			for range 10 {
				wg.Add(1)

				go func() {
					defer wg.Done()
					defer ginkgo.GinkgoRecover()

					errs <- notifier.Notify(context.Background(), testOutcome)
				}()
			}

			wg.Wait()
			close(errs)

			for err := range errs {
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
			}

			gomega.Expect(fake.Requests()).To(gomega.HaveLen(10))
		})

		ginkgo.It("rejects an unknown status without sending", func() {
			fake = newFakeTelegram(http.StatusOK)
			notifier := newTestNotifier(fake, testConfig())

			outcome := testOutcome
			outcome.Status = types.Status(42)
			gomega.Expect(notifier.Notify(context.Background(), outcome)).To(gomega.MatchError(types.ErrInvalidStatus))
			gomega.Expect(fake.Requests()).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("status gates", func() {
		ginkgo.DescribeTable("skip delivery when the gate for the status is closed",
			func(status types.Status, mutate func(*notifications.Config)) {
				fake = newFakeTelegram(http.StatusOK)
				config := testConfig()
				mutate(&config)
				notifier := newTestNotifier(fake, config)

				outcome := testOutcome
				outcome.Status = status
				gomega.Expect(notifier.Notify(context.Background(), outcome)).To(gomega.Succeed())
				gomega.Expect(fake.Requests()).To(gomega.BeEmpty())
			},
			ginkgo.Entry("success", types.StatusSuccess, func(c *notifications.Config) { c.OnSuccess = false }),
			ginkgo.Entry("warning", types.StatusWarning, func(c *notifications.Config) { c.OnWarning = false }),
			ginkgo.Entry("failure", types.StatusFailure, func(c *notifications.Config) { c.OnFailure = false }),
		)

		ginkgo.It("still delivers statuses whose gate is open", func() {
			fake = newFakeTelegram(http.StatusOK)
			config := testConfig()
			config.OnSuccess = false
			notifier := newTestNotifier(fake, config)

			outcome := testOutcome
			outcome.Status = types.StatusFailure
			gomega.Expect(notifier.Notify(context.Background(), outcome)).To(gomega.Succeed())
			gomega.Expect(fake.Requests()).To(gomega.HaveLen(1))
		})
	})

	ginkgo.Describe("retries", func() {
		ginkgo.It("gives up after max retries plus the first attempt", func() {
			fake = newFakeTelegram(http.StatusInternalServerError)
			config := testConfig()
			config.MaxRetries = 2
			notifier := newTestNotifier(fake, config)

			err := notifier.Notify(context.Background(), testOutcome)
			gomega.Expect(err).To(gomega.MatchError(notifications.ErrDeliveryExhausted))
			gomega.Expect(fake.Requests()).To(gomega.HaveLen(3))

			var deliveryErr *notifications.DeliveryError
			gomega.Expect(errors.As(err, &deliveryErr)).To(gomega.BeTrue())
			gomega.Expect(deliveryErr.Attempts).To(gomega.Equal(3))

			var statusErr *notifications.StatusError
			gomega.Expect(errors.As(err, &statusErr)).To(gomega.BeTrue())
			gomega.Expect(statusErr.StatusCode).To(gomega.Equal(http.StatusInternalServerError))
			gomega.Expect(statusErr.Body).To(gomega.Equal(`{"ok":false}`))
		})

		ginkgo.It("treats any non-200 status as a failure", func() {
			fake = newFakeTelegram(http.StatusNoContent)
			config := testConfig()
			config.MaxRetries = 1
			notifier := newTestNotifier(fake, config)

			err := notifier.Notify(context.Background(), testOutcome)
			gomega.Expect(err).To(gomega.MatchError(notifications.ErrDeliveryExhausted))
			gomega.Expect(fake.Requests()).To(gomega.HaveLen(2))
		})

		ginkgo.It("recovers when a later attempt succeeds", func() {
			fake = newFakeTelegram(http.StatusBadGateway, http.StatusTooManyRequests, http.StatusOK)
			config := testConfig()
			config.MaxRetries = 5
			notifier := newTestNotifier(fake, config)

			gomega.Expect(notifier.Notify(context.Background(), testOutcome)).To(gomega.Succeed())
			gomega.Expect(fake.Requests()).To(gomega.HaveLen(3))
		})

		ginkgo.It("waits the configured time between attempts", func() {
			fake = newFakeTelegram(http.StatusServiceUnavailable)
			config := testConfig()
			config.MaxRetries = 2
			config.RetryWait = 25 * time.Millisecond
			notifier := newTestNotifier(fake, config)

			start := time.Now()
			err := notifier.Notify(context.Background(), testOutcome)
			gomega.Expect(err).To(gomega.MatchError(notifications.ErrDeliveryExhausted))
			gomega.Expect(time.Since(start)).To(gomega.BeNumerically(">=", 50*time.Millisecond))
		})

		ginkgo.It("retries transport errors and keeps the token out of the error", func() {
			fake = newFakeTelegram(http.StatusOK)
			baseURL := fake.server.URL
			fake.Close()
			fake = nil

			config := testConfig()
			config.MaxRetries = 1
			notifier, err := notifications.NewTelegramNotifier(config, notifications.WithBaseURL(baseURL))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			err = notifier.Notify(context.Background(), testOutcome)
			gomega.Expect(err).To(gomega.MatchError(notifications.ErrDeliveryExhausted))
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("after 2 attempt(s)"))
			gomega.Expect(err.Error()).NotTo(gomega.ContainSubstring("bot_api_token"))
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("<redacted>"))
		})
	})

	ginkgo.Describe("cancellation", func() {
		ginkgo.It("stops waiting when the context is cancelled", func() {
			fake = newFakeTelegram(http.StatusInternalServerError)
			config := testConfig()
			config.RetryWait = time.Hour
			notifier := newTestNotifier(fake, config)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go func() {
				<-fake.received
				cancel()
			}()

			errCh := make(chan error, 1)
			go func() { errCh <- notifier.Notify(ctx, testOutcome) }()

			var err error
			gomega.Eventually(errCh, 5*time.Second).Should(gomega.Receive(&err))
			gomega.Expect(err).To(gomega.MatchError(notifications.ErrCancelled))
			gomega.Expect(errors.Is(err, context.Canceled)).To(gomega.BeTrue())
			gomega.Expect(fake.Requests()).To(gomega.HaveLen(1))
		})

		ginkgo.It("reports an expired deadline as a cancellation", func() {
			fake = newFakeTelegram(http.StatusInternalServerError)
			config := testConfig()
			config.RetryWait = 20 * time.Millisecond
			notifier := newTestNotifier(fake, config)

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			err := notifier.Notify(ctx, testOutcome)
			gomega.Expect(err).To(gomega.MatchError(notifications.ErrCancelled))
			gomega.Expect(errors.Is(err, context.DeadlineExceeded)).To(gomega.BeTrue())
		})

		ginkgo.It("reports exhaustion when the context ends during the last allowed attempt", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var calls int

			client := clientFunc(func(req *http.Request) (*http.Response, error) {
				calls++
				if calls == 1 {
					return &http.Response{
						StatusCode: http.StatusInternalServerError,
						Body:       io.NopCloser(strings.NewReader(`{"ok":false}`)),
					}, nil
				}

				cancel()

				return nil, req.Context().Err()
			})

			config := testConfig()
			config.MaxRetries = 1
			notifier, err := notifications.NewTelegramNotifier(config, notifications.WithHTTPClient(client))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			err = notifier.Notify(ctx, testOutcome)
			gomega.Expect(err).To(gomega.MatchError(notifications.ErrDeliveryExhausted))
			gomega.Expect(err).NotTo(gomega.MatchError(notifications.ErrCancelled))

			var deliveryErr *notifications.DeliveryError
			gomega.Expect(errors.As(err, &deliveryErr)).To(gomega.BeTrue())
			gomega.Expect(deliveryErr.Attempts).To(gomega.Equal(2))
			gomega.Expect(calls).To(gomega.Equal(2))
		})
	})

	ginkgo.Describe("metrics", func() {
		ginkgo.It("records attempts, failures and the terminal result", func() {
			fake = newFakeTelegram(http.StatusInternalServerError, http.StatusOK)
			registry := prometheus.NewRegistry()
			m, err := metrics.NewWithRegistry(registry)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			defer m.Shutdown()

			notifier := newTestNotifier(fake, testConfig(), notifications.WithMetrics(m))
			gomega.Expect(notifier.Notify(context.Background(), testOutcome)).To(gomega.Succeed())

			expected := `
# HELP backupnotify_delivery_attempts_total Number of HTTP delivery attempts made
# TYPE backupnotify_delivery_attempts_total counter
backupnotify_delivery_attempts_total 2
# HELP backupnotify_delivery_failures_total Number of HTTP delivery attempts that failed with a transport error or non-200 status
# TYPE backupnotify_delivery_failures_total counter
backupnotify_delivery_failures_total 1
# HELP backupnotify_notifications_total Number of notifications handled, by job status and delivery result
# TYPE backupnotify_notifications_total counter
backupnotify_notifications_total{result="delivered",status="Success"} 1
`
			gomega.Expect(testutil.GatherAndCompare(registry, strings.NewReader(expected),
				"backupnotify_delivery_attempts_total",
				"backupnotify_delivery_failures_total",
				"backupnotify_notifications_total",
			)).To(gomega.Succeed())
		})
	})
})
