package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"log"
	mrand "math/rand"
	"os"
	"path/filepath"
	"time"

	"realm-defense/internal/config"
	"realm-defense/internal/game"
	"realm-defense/internal/maps"
	"realm-defense/internal/server"
)

const (
	defaultAddr      = ":2222"
	hostKeyPath      = "host_key"
	defaultArenaPath = "assets/arena.json"
	defaultRealmPath = "assets/realm.yaml"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	if err := ensureHostKey(hostKeyPath); err != nil {
		log.Fatalf("Host key error: %v", err)
	}

	arenaPath := envOr("ARENA_FILE", defaultArenaPath)
	arena, err := maps.LoadMap(arenaPath)
	if err != nil {
		log.Printf("[main] could not load arena from %s: %v, using the default arena", arenaPath, err)
		arena = maps.DefaultMap()
	}
	for _, p := range arena.Problems() {
		log.Printf("[main] arena %q: %s", arena.Name, p)
	}
	log.Printf("[main] arena loaded: %s (%dx%d, %d markers)", arena.Name, arena.Width, arena.Height, len(arena.Markers))

	realmPath := envOr("REALM_FILE", defaultRealmPath)
	realm, err := config.LoadRealmConfig(realmPath)
	if err != nil {
		log.Printf("[main] could not load realm from %s: %v, using the default realm", realmPath, err)
		realm = config.DefaultRealmConfig()
	}

	world := game.NewWorld(arena, mrand.New(mrand.NewSource(time.Now().UnixNano())))
	mode, err := realm.Build(world)
	if err != nil {
		log.Fatalf("Realm error: %v", err)
	}
	gameLoop := game.NewGameLoop(world, mode)

	go gameLoop.Run()
	defer gameLoop.Stop()

	watcher, err := config.NewWatcher(filepath.Dir(realmPath))
	if err != nil {
		log.Printf("[main] realm hot reload disabled: %v", err)
	} else {
		defer watcher.Close()
		go watchRealm(watcher, realmPath, gameLoop)
	}

	listenAddr := defaultAddr
	if port := os.Getenv("PORT"); port != "" {
		listenAddr = ":" + port
	}
	sshServer := server.NewSSHServer(listenAddr, hostKeyPath, gameLoop)
	log.Printf("Starting Realm Defense, connect with: ssh -p %s YourName@localhost", listenAddr[1:])
	if err := sshServer.Start(); err != nil {
		log.Fatalf("SSH server error: %v", err)
	}
}

// watchRealm reloads the realm file whenever it or a script beside it
// changes. New waves apply from the next restart.
func watchRealm(w *config.Watcher, realmPath string, gl *game.GameLoop) {
	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return
			}
			realm, err := config.LoadRealmConfig(realmPath)
			if err != nil {
				log.Printf("[reload] %s changed, keeping the running realm: %v", filepath.Base(name), err)
				continue
			}
			gl.Apply(realm.Apply)
			log.Printf("[reload] realm reloaded after %s changed", filepath.Base(name))
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("[reload] watcher error: %v", err)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func ensureHostKey(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	log.Println("Generating new host key...")
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}

	keyBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return pem.Encode(f, &pem.Block{Type: "PRIVATE KEY", Bytes: keyBytes})
}
