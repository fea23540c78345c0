package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danmuck/handover/internal/config"
	"github.com/danmuck/handover/internal/logging"
	"github.com/danmuck/handover/internal/observability"
	"github.com/danmuck/handover/internal/orchestrator"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const peerRadioAddress = "A0:B1:C2:D3:E4:F5"

type simulateOptions struct {
	configPath  string
	payload     string
	timeout     time.Duration
	metricsAddr string
}

func newSimulateCmd() *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a negotiated handover between two in-process engines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultEngineConfig()
			if opts.configPath != "" {
				loaded, err := config.LoadEngineConfig(opts.configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if !cmd.Flags().Changed("log-level") {
				logging.SetLevel(cfg.LogLevel)
			}
			if cfg.RadioAddress == peerRadioAddress {
				return fmt.Errorf("radio_address %s collides with the simulated peer", cfg.RadioAddress)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			if opts.metricsAddr != "" {
				stop := serveMetrics(opts.metricsAddr)
				defer stop()
			}

			c, err := runSimulation(ctx, cfg, []byte(opts.payload))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transfer %s: status=%d session=%s\n", c.RequestID, c.Status, c.Session)
			if c.Status != orchestrator.StatusSuccess {
				return errors.New("transfer failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "engine config for the sending device")
	cmd.Flags().StringVar(&opts.payload, "payload", "hello from handoverctl", "bytes to transfer")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "overall simulation deadline")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while simulating")
	return cmd
}

func serveMetrics(addr string) func() {
	observability.RegisterMetrics()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// runSimulation wires a sender built from cfg and a receiving peer through a
// loopback link and transfers payload from sender to peer.
func runSimulation(ctx context.Context, cfg config.EngineConfig, payload []byte) (orchestrator.Completion, error) {
	loop := orchestrator.NewLoop()
	result := make(chan orchestrator.Completion, 1)

	sender := newSimEngine(loop, cfg.DeviceName, cfg.RadioAddress, cfg.RadioEnabled)
	peerCfg := cfg
	peerCfg.DeviceName = "peer." + cfg.DeviceName
	peer := newSimEngine(loop, peerCfg.DeviceName, peerRadioAddress, true)

	sender.link.peer = peer
	peer.link.peer = sender
	sender.files.onDone = func() {
		peer.o.CompleteTransfer(true)
		sender.o.CompleteTransfer(true)
	}
	sender.notify = func(c orchestrator.Completion) {
		select {
		case result <- c:
		default:
		}
	}

	var err error
	if sender.o, err = orchestrator.New(config.OrchestratorConfig(cfg), sender.deps()); err != nil {
		return orchestrator.Completion{}, err
	}
	if peer.o, err = orchestrator.New(config.OrchestratorConfig(peerCfg), peer.deps()); err != nil {
		return orchestrator.Completion{}, err
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(runCtx) }()

	session := orchestrator.SessionID(uuid.NewString())
	requestID := uuid.NewString()
	loop.Post(func() {
		log.Info().Str("session", string(session)).Str("request_id", requestID).Msg("starting simulated transfer")
		sender.o.StartOutgoingTransfer(session, payload, requestID)
	})

	if cfg.ReplyTimeout > 0 {
		go expireLoop(runCtx, loop, sender)
	}

	select {
	case c := <-result:
		stop()
		<-loopDone
		return c, nil
	case <-ctx.Done():
		stop()
		<-loopDone
		return orchestrator.Completion{}, fmt.Errorf("simulation: %w", ctx.Err())
	}
}

func expireLoop(ctx context.Context, loop *orchestrator.Loop, e *simEngine) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			loop.Post(func() { e.o.ExpirePending(now) })
		}
	}
}

// simEngine is one simulated device. Every collaborator completion is posted
// back onto the shared loop.
type simEngine struct {
	name   string
	loop   *orchestrator.Loop
	o      *orchestrator.Orchestrator
	link   *simLink
	radio  *simRadio
	files  *simFiles
	notify func(orchestrator.Completion)
}

func newSimEngine(loop *orchestrator.Loop, name, address string, enabled bool) *simEngine {
	e := &simEngine{name: name, loop: loop}
	e.link = &simLink{loop: loop}
	e.radio = &simRadio{engine: e, address: address, enabled: enabled}
	e.files = &simFiles{loop: loop}
	return e
}

func (e *simEngine) deps() orchestrator.Dependencies {
	logger := observability.EngineLogger(e.name, e.radio.address)
	return orchestrator.Dependencies{
		Transport: e.link,
		Radio:     e.radio,
		Settings:  e.radio,
		Files:     e.files,
		Notifier:  e,
		Logger:    &logger,
	}
}

func (e *simEngine) TransferComplete(c orchestrator.Completion) {
	log.Info().Str("device", e.name).Int("status", c.Status).Str("request_id", c.RequestID).Msg("transfer complete")
	if e.notify != nil {
		e.notify(c)
	}
}

type simLink struct {
	loop *orchestrator.Loop
	peer *simEngine
}

func (l *simLink) Send(session orchestrator.SessionID, data []byte, done func(error)) {
	msg := append([]byte(nil), data...)
	l.loop.Post(func() {
		done(nil)
		l.peer.o.HandleMessage(session, msg)
	})
}

type simRadio struct {
	engine  *simEngine
	address string
	enabled bool
	paired  map[string]bool
}

func (r *simRadio) Enabled() bool   { return r.enabled }
func (r *simRadio) Address() string { return r.address }

func (r *simRadio) Pair(address string, done func(error)) {
	r.engine.loop.Post(func() {
		if r.paired == nil {
			r.paired = make(map[string]bool)
		}
		r.paired[address] = true
		done(nil)
	})
}

func (r *simRadio) Unpair(address string) {
	delete(r.paired, address)
}

// RequestEnable turns the radio on asynchronously, like a settings write.
func (r *simRadio) RequestEnable(key string) {
	r.engine.loop.Post(func() {
		log.Debug().Str("device", r.engine.name).Str("setting", key).Msg("radio enabled")
		r.enabled = true
		r.engine.o.OnRadioReady()
	})
}

type simFiles struct {
	loop   *orchestrator.Loop
	onDone func()
}

func (f *simFiles) SendFile(address string, payload []byte) {
	log.Info().Str("to", address).Int("bytes", len(payload)).Msg("sending file")
	f.loop.Post(f.onDone)
}
