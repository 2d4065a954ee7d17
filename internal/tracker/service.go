package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/actionsum/xswallow/internal/swallow"
	"github.com/actionsum/xswallow/pkg/window"
)

// Service runs the swallow engine. The engine is only touched by the
// goroutine that called Start; a background goroutine does nothing but
// wait for protocol events and hand them over one at a time.
type Service struct {
	gateway window.Gateway
	engine  *swallow.Engine
	events  chan window.Event
	done    chan struct{}
	started atomic.Bool
	running atomic.Bool
}

func NewService(gateway window.Gateway, engine *swallow.Engine) *Service {
	return &Service{
		gateway: gateway,
		engine:  engine,
		// unbuffered: the pump is never more than one event ahead
		events: make(chan window.Event),
		done:   make(chan struct{}),
	}
}

// Start seeds the engine with the current client list and dispatches events
// until a quit arrives from a signal, ctx, Stop or a lost connection. Once
// the loop is running, the engine's Quit always runs before Start returns.
func (s *Service) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("tracker can only be started once")
	}
	defer close(s.done)

	list, err := s.gateway.WindowList()
	if err != nil {
		return fmt.Errorf("failed to get initial window list: %w", err)
	}
	s.engine.Initialize(list)
	log.Printf("Tracking %d windows", len(list))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, unix.SIGINT, unix.SIGTERM)
	defer signal.Stop(sigChan)

	s.running.Store(true)
	defer s.running.Store(false)

	go s.pump()
	go s.watch(ctx, sigChan)

	for {
		ev := <-s.events
		switch ev.Kind {
		case window.EventQuit:
			s.engine.Quit()
			log.Println("Tracker stopped")
			return ev.Err
		case window.EventError:
			log.Printf("Error %v", ev.Err)
		case window.EventWindowList:
			if err := s.engine.Refresh(); err != nil {
				log.Printf("Failed to refresh windows: %v", err)
			}
		case window.EventUpdate:
			s.engine.Update(ev.Window)
		case window.EventClose:
			s.engine.Close(ev.Window)
		}
	}
}

// pump is the only goroutine that waits on the connection.
func (s *Service) pump() {
	for {
		ev, err := s.gateway.NextEvent()
		if err != nil {
			ev = window.Event{Kind: window.EventError, Err: err}
			if errors.Is(err, window.ErrConnectionClosed) {
				ev.Kind = window.EventQuit
			}
		}

		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
		if ev.Kind == window.EventQuit {
			return
		}
	}
}

func (s *Service) watch(ctx context.Context, sigChan <-chan os.Signal) {
	select {
	case sig := <-sigChan:
		log.Printf("Received %s", sig)
	case <-ctx.Done():
	case <-s.done:
		return
	}
	s.Stop()
}

// Stop queues a quit behind any event already handed to the loop. It
// returns once the loop took it, or immediately if the loop has ended.
func (s *Service) Stop() {
	select {
	case s.events <- window.Event{Kind: window.EventQuit}:
		log.Println("Quitting…")
	case <-s.done:
	}
}

func (s *Service) IsRunning() bool {
	return s.running.Load()
}
