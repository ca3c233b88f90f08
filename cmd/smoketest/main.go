package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sofiamaki/pilatesapp/internal/e2etest"
	"github.com/sofiamaki/pilatesapp/internal/logging"
	"github.com/sofiamaki/pilatesapp/internal/testhelpers"
	"golang.org/x/sync/errgroup"
)

const scenarioTimeout = 30 * time.Second

type scenario struct {
	targetMinutes int
	difficulty    string
}

type generatedPlan struct {
	ID              string `json:"id"`
	MovementCount   int    `json:"movement_count"`
	TransitionCount int    `json:"transition_count"`
	Items           []struct {
		Type string `json:"type"`
	} `json:"items"`
}

// runScenario generates, accepts and re-reads one class with a fresh session
// and verifies the structural invariants of the returned plan.
func runScenario(ctx context.Context, url string, sc scenario) error {
	ctx, cancel := context.WithTimeout(ctx, scenarioTimeout)
	defer cancel()

	client, err := e2etest.NewClient(url)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	var plan generatedPlan
	body := map[string]any{
		"target_duration_minutes": sc.targetMinutes,
		"difficulty":              sc.difficulty,
	}
	status, err := client.PostJSON(ctx, "/api/classes/generate", body, &plan)
	if err != nil {
		return fmt.Errorf("generate class: %w", err)
	}
	if status != http.StatusCreated {
		return fmt.Errorf("generate class: unexpected status %d", status)
	}

	if plan.MovementCount == 0 {
		return fmt.Errorf("class %s has no movements", plan.ID)
	}
	if plan.TransitionCount != plan.MovementCount-1 {
		return fmt.Errorf("class %s has %d transitions for %d movements", plan.ID, plan.TransitionCount, plan.MovementCount)
	}
	for i, item := range plan.Items {
		wantType := "movement"
		if i%2 == 1 {
			wantType = "transition"
		}
		if item.Type != wantType {
			return fmt.Errorf("class %s item %d is %s, want %s", plan.ID, i, item.Type, wantType)
		}
	}

	if status, err = client.PostJSON(ctx, "/api/classes/"+plan.ID+"/accept", nil, nil); err != nil {
		return fmt.Errorf("accept class: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("accept class: unexpected status %d", status)
	}

	var fetched generatedPlan
	if status, err = client.GetJSON(ctx, "/api/classes/"+plan.ID, &fetched); err != nil {
		return fmt.Errorf("get class: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("get class: unexpected status %d", status)
	}
	if fetched.MovementCount != plan.MovementCount {
		return fmt.Errorf("class %s movement count drifted from %d to %d", plan.ID, plan.MovementCount, fetched.MovementCount)
	}

	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		err      error
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	var readyClient *e2etest.Client
	if readyClient, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = readyClient.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}

	scenarios := []scenario{
		{targetMinutes: 30, difficulty: "beginner"},
		{targetMinutes: 45, difficulty: "beginner"},
		{targetMinutes: 30, difficulty: "intermediate"},
		{targetMinutes: 45, difficulty: "intermediate"},
		{targetMinutes: 60, difficulty: "advanced"},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sc := range scenarios {
		g.Go(func() error {
			if scErr := runScenario(gctx, url, sc); scErr != nil {
				return fmt.Errorf("scenario %dmin %s: %w", sc.targetMinutes, sc.difficulty, scErr)
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "smoke test failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
