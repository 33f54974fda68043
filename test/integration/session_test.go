//go:build integration

package integration

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/parcel/internal/archive"
	"github.com/eliteGoblin/parcel/internal/codec"
	"github.com/eliteGoblin/parcel/internal/domain"
	"github.com/eliteGoblin/parcel/internal/infra"
	"github.com/eliteGoblin/parcel/internal/ipc"
	"github.com/eliteGoblin/parcel/internal/launch"
	"github.com/eliteGoblin/parcel/internal/session"
	"github.com/eliteGoblin/parcel/internal/usecase"
)

// memoryEmitter collects emitted events for assertions.
type memoryEmitter struct {
	mu     sync.Mutex
	events []string
}

func (e *memoryEmitter) Emit(event string, _ any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *memoryEmitter) count(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev == event {
			n++
		}
	}
	return n
}

var _ = Describe("Launch session", func() {
	var (
		ctx      context.Context
		cancel   context.CancelFunc
		counters *session.Counters
		emitter  *memoryEmitter
		agg      *launch.Aggregator
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		counters = session.NewCounters()
		emitter = &memoryEmitter{}
		agg = launch.NewAggregator(launch.AggregatorConfig{
			WindowPollInterval: time.Millisecond,
			StartupDebounce:    0,
			EarlyWindowCount:   4,
			WindowWaitBound:    5 * time.Second,
		}, counters, emitter, zap.NewNop())
	})

	AfterEach(func() {
		cancel()
	})

	It("delivers a burst of forwarded launches and signals readiness exactly once", func() {
		socket := filepath.Join(GinkgoT().TempDir(), "parcel.sock")
		server, err := ipc.NewServer(ctx, socket, agg, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		runner := archive.NewRunner(codec.New(zap.NewNop()), emitter, zap.NewNop())
		surface := usecase.NewSurface(
			runner,
			counters,
			infra.NewProcessManager(),
			infra.NewFolderOpener(),
			nil,
			"parcel",
			zap.NewNop(),
		)
		Expect(server.RegisterSurface(surface)).To(Succeed())
		server.Serve()
		defer server.Close()

		watcher := launch.NewReadinessWatcher(time.Millisecond, counters, emitter, zap.NewNop())
		go watcher.Run(ctx)

		// The primary's own launch.
		agg.HandleLaunch(domain.LaunchRequest{
			Argv:   []string{"parcel", "launch", "/drop/a.txt"},
			Intent: domain.IntentCompress,
		})

		// Four redirected launches racing in over the socket.
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				client, err := ipc.Dial(socket)
				Expect(err).NotTo(HaveOccurred())
				defer client.Close()
				_, err = client.Forward([]string{"parcel", "launch", "/drop/b.txt", "/drop/c.txt"}, "compression")
				Expect(err).NotTo(HaveOccurred())
			}()
		}
		wg.Wait()

		Expect(counters.Expected()).To(Equal(int64(9)))

		// Nothing delivered until the window exists.
		Consistently(counters.Delivered, 30*time.Millisecond).Should(Equal(int64(0)))

		counters.WindowCreated()

		Eventually(counters.Delivered, time.Second).Should(Equal(int64(9)))
		Eventually(func() int { return emitter.count(domain.EventEnableOK) }, time.Second).Should(Equal(1))

		// The signal never re-arms.
		Consistently(func() int { return emitter.count(domain.EventEnableOK) }, 50*time.Millisecond).Should(Equal(1))
		Expect(emitter.count(domain.EventFilesSelected)).To(Equal(5))

		// The command surface answers on the same socket the launches used.
		client, err := ipc.Dial(socket)
		Expect(err).NotTo(HaveOccurred())
		defer client.Close()

		Expect(client.Acknowledge(9)).To(Succeed())
		Expect(counters.Acknowledged()).To(Equal(int64(9)))

		kinds, err := client.Kinds()
		Expect(err).NotTo(HaveOccurred())
		Expect(kinds).To(HaveLen(7))
	})

	It("keeps readiness unsignaled when a launch never converges", func() {
		counters.AddExpected(3) // announced but never delivered

		watcher := launch.NewReadinessWatcher(time.Millisecond, counters, emitter, zap.NewNop())
		go watcher.Run(ctx)

		Consistently(func() int { return emitter.count(domain.EventEnableOK) }, 50*time.Millisecond).Should(BeZero())
	})
})
