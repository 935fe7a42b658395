package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/nidhogg/ambience/internal/sound"
	"go.uber.org/zap"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "Ambience service URL")
	limit := flag.Int("limit", 10, "History entries to show")
	redisURL := flag.String("redis", "redis://localhost:6379/0", "Redis URL for listen")
	stream := flag.String("stream", sound.DefaultStream, "Redis stream for listen")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ambiencectl [flags] status|events|history|played|listen|trigger <event>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "status":
		err = fetchStatus(*server)
	case "events":
		err = fetchEvents(*server)
	case "history":
		err = fetchHistory(*server, *limit)
	case "played":
		err = fetchPlayed(*server, *limit)
	case "listen":
		err = listen(*redisURL, *stream)
	case "trigger":
		if len(args) < 2 {
			flag.Usage()
			os.Exit(2)
		}
		err = trigger(*server, args[1])
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

type entry struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	Outcome   string `json:"outcome"`
	Sound     string `json:"sound"`
	StartTick uint64 `json:"start_tick"`
	Duration  int    `json:"duration"`
	Status    string `json:"status"`
	Error     string `json:"error"`
}

func fetchStatus(server string) error {
	var status struct {
		World  string `json:"world"`
		Tick   uint64 `json:"tick"`
		TickMS int64  `json:"tick_ms"`
		Active *entry `json:"active"`
	}
	if err := getJSON(server+"/api/world/status", &status); err != nil {
		return fmt.Errorf("fetch status: %w", err)
	}
	fmt.Printf("World %s | tick %d (%dms)\n", status.World, status.Tick, status.TickMS)
	if status.Active == nil {
		fmt.Println("No active event.")
		return nil
	}
	fmt.Print("Active: ")
	printEntry(*status.Active)
	return nil
}

func fetchEvents(server string) error {
	var names []string
	if err := getJSON(server+"/api/events", &names); err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}
	fmt.Println("Registered events:")
	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}
	return nil
}

func fetchHistory(server string, limit int) error {
	var entries []entry
	if err := getJSON(fmt.Sprintf("%s/api/events/history?limit=%d", server, limit), &entries); err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No finished events yet.")
		return nil
	}
	for _, e := range entries {
		printEntry(e)
	}
	return nil
}

func fetchPlayed(server string, limit int) error {
	var played []struct {
		World string `json:"world"`
		Tick  uint64 `json:"tick"`
		Event string `json:"event"`
		Sound struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"sound"`
	}
	if err := getJSON(fmt.Sprintf("%s/api/sounds/played?limit=%d", server, limit), &played); err != nil {
		return fmt.Errorf("fetch played sounds: %w", err)
	}
	for _, p := range played {
		fmt.Printf("  tick %-8d %-20s %s (%s)\n", p.Tick, p.Event, p.Sound.Name, p.Sound.ID)
	}
	return nil
}

func trigger(server, name string) error {
	resp, err := http.Post(triggerURL(server, name), "application/json", nil)
	if err != nil {
		return fmt.Errorf("trigger %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var body struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("trigger %s: %s (%d)", name, body.Error, resp.StatusCode)
	}

	var e entry
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		return fmt.Errorf("parse trigger response: %w", err)
	}
	fmt.Print("Triggered: ")
	printEntry(e)
	return nil
}

func triggerURL(server, name string) string {
	return server + "/api/events/" + url.PathEscape(name) + "/trigger"
}

// listen follows the play request stream until interrupted.
func listen(redisURL, stream string) error {
	sp, err := sound.NewStreamPlayer(redisURL, stream, zap.NewNop())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer sp.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Listening on %s (Ctrl-C to stop)\n", stream)
	for req := range sp.Subscribe(ctx, "$") {
		fmt.Printf("  [%s] tick %-8d %-20s %s\n", req.World, req.Tick, req.Event, req.Sound.ID)
	}
	return nil
}

func getJSON(endpoint string, v interface{}) error {
	resp, err := http.Get(endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func printEntry(e entry) {
	icon := "\033[32m✓\033[0m"
	switch e.Status {
	case "active":
		icon = "\033[33m●\033[0m"
	case "failed":
		icon = "\033[31m✗\033[0m"
	}
	fmt.Printf("%s %s/%s sound=%s tick=%d duration=%d", icon, e.Event, e.Outcome, e.Sound, e.StartTick, e.Duration)
	if e.Error != "" {
		fmt.Printf(" \033[31m(%s)\033[0m", e.Error)
	}
	fmt.Println()
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "\033[31mError: "+format+"\033[0m\n", args...)
}
