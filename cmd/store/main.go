// cmd/store/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpin "bookstore/internal/adapters/in/http"
	"bookstore/internal/application/cart"
	"bookstore/internal/application/session"
	"bookstore/internal/platform/di"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─────────────────────────────────────────────────────────────
	// Lightweight healthz first so PORT is LISTENed quickly
	// ─────────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// ─────────────────────────────────────────────────────────────
	// DI container & heavy deps; keep /healthz even on failure
	// ─────────────────────────────────────────────────────────────
	var cont *di.Container
	var carts *cart.Supervisor

	if c, err := di.NewContainer(ctx); err != nil {
		log.Printf("[boot] WARN: di init failed: %v (serving /healthz only)", err)
	} else {
		cont = c
		defer cont.Close()

		// The supervisor follows every identity emission: the first
		// resolution opens the cart, a later identity change tears it down
		// and rebuilds it for the new user. Subscribing before Start makes
		// the initial emission flow through the same path.
		carts = cart.NewSupervisor(cont.NewCart)
		sessSub := cont.Session.Subscribe(func(s session.Session) {
			carts.OnSession(ctx, s)
		})
		defer sessSub.Cancel()

		if err := cont.Session.Start(ctx); err != nil {
			log.Printf("[boot] WARN: session start failed: %v", err)
		}

		// The catalog is identity-independent; it opens once the session has
		// resolved (identity or not).
		go func() {
			<-cont.Session.Ready()
			log.Printf("[boot] session ready identity=%q", cont.Session.Current().Identity)
			if err := cont.Catalog.Start(ctx); err != nil {
				log.Printf("[boot] WARN: catalog start failed: %v", err)
			}
		}()

		router := httpin.NewRouter(httpin.RouterDeps{
			Catalog: cont.Catalog,
			Cart:    carts.Current,
		})
		mux.Handle("/", router)
	}

	// ─────────────────────────────────────────────────────────────
	// Port resolution: config → env:PORT → 8080
	// ─────────────────────────────────────────────────────────────
	port := ""
	if cont != nil && cont.Config.Port != "" {
		port = cont.Config.Port
	}
	if port == "" {
		if p := os.Getenv("PORT"); p != "" {
			port = p
		}
	}
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		log.Printf("[boot] listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[boot] server failed: %v", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────
	// Teardown: cancel all three subscriptions, then stop serving
	// ─────────────────────────────────────────────────────────────
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Printf("[boot] shutting down")

	if carts != nil {
		carts.Close()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
