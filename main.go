/*
Package main
File: main.go
Description: Server entry point. Loads configuration and tuning, restores saved
flight preferences, starts the fixed-tick fleet scheduler and the real-time
WebSocket hub, and serves the ship API until SIGINT/SIGTERM.
SIGHUP reloads tuning.yaml without a restart.
*/

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/everforgeworks/plasma-siege/internal/api"
	"github.com/everforgeworks/plasma-siege/internal/config"
	"github.com/everforgeworks/plasma-siege/internal/game"
	"github.com/everforgeworks/plasma-siege/internal/storage"
	"github.com/everforgeworks/plasma-siege/internal/tuning"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Process configuration (.env + environment)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config Fail: %v", err)
	}

	// 2. Game tuning from YAML
	tun, err := loadTuning(cfg.TuningPath)
	if err != nil {
		log.Fatalf("Tuning Fail: %v", err)
	}
	profiles, err := tun.Profiles()
	if err != nil {
		log.Fatalf("Tuning Fail: %v", err)
	}

	// 3. Persistence: saved flight preferences override the file
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Storage Fail: %v", err)
	}
	defer store.Close()
	loaded, err := store.LoadFlightPrefs(ctx, &tun.Ship.Flight)
	switch {
	case game.IsConfigurationError(err):
		log.Printf("PREFS: Ignoring saved flight preferences: %v", err)
	case err != nil:
		log.Fatalf("Storage Fail: %v", err)
	case loaded:
		log.Println("PREFS: Loaded saved flight preferences")
	}

	var recorder *storage.Recorder
	if cfg.RecorderDir != "" {
		recorder = storage.NewRecorder(cfg.RecorderDir)
		defer recorder.Close()
	}

	// 4. The fleet and its event fan-out
	var hub *api.Hub
	fleet := game.NewFleet(tun.Ship, game.Options{
		Profiles: profiles,
		Hooks: game.Hooks{
			OnDestroyed: func(ev game.DestructionEvent) {
				hub.PublishDestroyed(ev)
				if recorder != nil {
					if err := recorder.RecordDestroyed(ev); err != nil {
						log.Printf("RECORDER: %v", err)
					}
				}
			},
			OnLevelUp: func(ev game.LevelUpEvent) {
				hub.PublishLevelUp(ev)
				if recorder != nil {
					if err := recorder.RecordLevelUp(ev); err != nil {
						log.Printf("RECORDER: %v", err)
					}
				}
			},
			OnFire: func(ev game.FireEvent) {
				hub.PublishFire(ev)
			},
		},
	})

	// 5. Real-Time WebSocket Hub
	hub = api.NewHub(fleet, api.HubOptions{
		AllowedOrigin: cfg.AllowedOrigin,
		InputRate:     rate.Limit(cfg.InputRate),
		InputBurst:    cfg.InputBurst,
	})
	go hub.Run(ctx)

	// 6. THE SIMULATION HEARTBEAT
	// Fixed-step ticks; telemetry goes out every N ticks.
	var broadcastEvery atomic.Int64
	broadcastEvery.Store(int64(tun.BroadcastEveryTicks))
	scheduler := game.NewScheduler(fleet, tun.TickRateHz)
	scheduler.OnTick = func(tick uint64) {
		if n := broadcastEvery.Load(); n > 0 && tick%uint64(n) == 0 && fleet.Len() > 0 {
			hub.PublishTelemetry(fleet.Snapshots())
		}
	}
	go scheduler.Run(ctx)

	handlers := api.NewHandlers(fleet, store, tun.Upgrades)

	// 7. Hot-reload logic: Listen for SIGHUP to refresh tuning without restart
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGHUP)
		defer signal.Stop(sigChan)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigChan:
			}
			log.Println("SIGNAL: Reloading tuning...")
			next, err := loadTuning(cfg.TuningPath)
			if err != nil {
				log.Printf("TUNING: reload rejected: %v", err)
				continue
			}
			nextProfiles, err := next.Profiles()
			if err != nil {
				log.Printf("TUNING: reload rejected: %v", err)
				continue
			}
			if err := fleet.Reconfigure(next.Ship, nextProfiles); err != nil {
				log.Printf("TUNING: reload rejected: %v", err)
				continue
			}
			handlers.SetCatalog(next.Upgrades)
			broadcastEvery.Store(int64(next.BroadcastEveryTicks))
			if next.TickRateHz != tun.TickRateHz {
				log.Printf("TUNING: tick_rate_hz change to %d applies after restart", next.TickRateHz)
			}
			log.Printf("TUNING: Applied to %d live ships", fleet.Len())
		}
	}()

	// 8. Setup Router and Handlers
	mux := http.NewServeMux()
	handlers.Register(mux, hub)

	// 9. Start the Server
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           corsMiddleware(cfg.AllowedOrigin, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("PLASMA SIEGE: Server live on %s (%d Hz)", cfg.Addr, tun.TickRateHz)
		log.Printf("Real-time Hub: Online")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("SIGNAL: Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}

	// 10. Persist preferences and every live pilot
	if err := store.SaveFlightPrefs(shutdownCtx, fleet.Config().Flight); err != nil {
		log.Printf("PREFS: save failed: %v", err)
	}
	if err := store.SavePilots(shutdownCtx, fleet.Records()); err != nil {
		log.Printf("PILOTS: save failed: %v", err)
	}
	log.Printf("PILOTS: Saved %d pilots", fleet.Len())
}

// loadTuning reads the tuning file, falling back to the built-in defaults when it does not exist.
func loadTuning(path string) (tuning.Tuning, error) {
	t, err := tuning.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("TUNING: %s not found, using defaults", path)
		return tuning.Defaults(), nil
	}
	return t, err
}

// corsMiddleware lets the desktop client talk to the server across domains.
func corsMiddleware(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
