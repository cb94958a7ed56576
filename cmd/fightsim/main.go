// Package main provides the fightsim CLI, which plays one bout between two
// fighter sheets and prints the play-by-play and a stat sheet.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fightsim/internal/config"
	"github.com/cory-johannsen/fightsim/internal/game/ai"
	"github.com/cory-johannsen/fightsim/internal/game/bout"
	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/fighter"
	"github.com/cory-johannsen/fightsim/internal/game/technique"
	"github.com/cory-johannsen/fightsim/internal/observability"
	"github.com/cory-johannsen/fightsim/internal/scripting"
)

func main() {
	start := time.Now()

	sheetA := flag.String("a", "", "skills sheet of the red corner")
	sheetB := flag.String("b", "", "skills sheet of the blue corner")
	seed := flag.Uint64("seed", 0, "random seed; unset = crypto randomness")
	realtime := flag.Bool("realtime", false, "tick at the configured interval instead of as fast as possible")
	brainA := flag.String("brain-a", "", "red corner brain: internal, cpu, llm, lua:<path>, plan:<path>")
	brainB := flag.String("brain-b", "", "blue corner brain")
	initPath := flag.String("init", "", "write a default skills sheet to this path and exit")
	configPath := flag.String("config", "", "optional configuration file")
	verbose := flag.Bool("v", false, "log engine events to stderr")
	flag.Parse()

	if *initPath != "" {
		if err := os.WriteFile(*initPath, []byte(fighter.Format(fighter.DefaultProfile())), 0o644); err != nil {
			log.Fatalf("writing sheet: %v", err)
		}
		fmt.Fprintf(os.Stdout, "wrote %s\n", *initPath)
		return
	}
	if *sheetA == "" || *sheetB == "" {
		flag.Usage()
		os.Exit(1)
	}
	seeded := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seeded = true
		}
	})

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if !*verbose {
		cfg.Logging.Level = "warn"
		cfg.Logging.Format = "console"
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	a, err := fighter.LoadFile(*sheetA)
	if err != nil {
		log.Fatalf("loading red corner: %v", err)
	}
	b, err := fighter.LoadFile(*sheetB)
	if err != nil {
		log.Fatalf("loading blue corner: %v", err)
	}

	src, scriptSrc := dice.NewCryptoSource(), dice.NewCryptoSource()
	if seeded {
		src, scriptSrc = dice.NewSeededSource(*seed), dice.NewSeededSource(*seed+1)
	}

	catalog := technique.MustCatalog()
	scripts := scripting.NewManager(dice.NewLoggedRoller(scriptSrc, logger), logger)
	scripts.LookupTechnique = scripting.CatalogLookup(catalog)
	defer scripts.Close()

	brains := ai.NewRegistry(catalog, scripts, cfg.Scripting.InstructionLimit, logger)
	brains.NewLLM = func() bout.DecisionProvider { return ai.NewLLM(cfg.LLM) }

	var providers [2]bout.DecisionProvider
	for i, brain := range [2]string{*brainA, *brainB} {
		p, err := brains.Resolve(brain)
		if err != nil {
			log.Fatalf("resolving %s brain: %v", bout.Sides[i], err)
		}
		providers[i] = p
	}

	out := newRenderer(os.Stdout)
	done := make(chan bout.State, 1)
	eng := bout.NewEngine(a, b, bout.Config{
		Tuning:    bout.TuningFromConfig(cfg.Bout),
		Source:    src,
		Logger:    logger,
		Catalog:   catalog,
		Providers: providers,
		Callbacks: bout.Callbacks{
			OnAction:   out.action,
			OnRoundEnd: out.roundEnd,
			OnFightEnd: func(s bout.State) { done <- s },
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stdout, "%s vs %s\n\n", a.DisplayName(), b.DisplayName())

	var final bout.State
	if *realtime {
		eng.Start()
		select {
		case final = <-done:
		case <-ctx.Done():
			eng.Stop()
			final = <-done
		}
	} else {
		final = eng.Run(ctx)
	}
	out.result(final)

	logger.Debug("bout complete",
		zap.String("bout", final.ID),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}
