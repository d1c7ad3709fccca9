package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"reprise/internal/assets"
	"reprise/internal/config"
	"reprise/internal/discovery"
	"reprise/internal/history"
	"reprise/internal/session"
	"reprise/internal/status"
	"reprise/internal/watcher"
	"reprise/pkg/models"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "./reprise.toml", "path to configuration file")
	watchMode := flag.Bool("watch", false, "keep running and rescan when the library changes")
	practiceID := flag.String("practice", "", "full item id of a tune or part to practice")
	instrument := flag.String("instrument", "", "instrument for the practice session (defaults to the saved focus instrument)")
	flag.Parse()

	// Initialize basic logger for startup
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			logger.WithError(err).Warn("Could not load .env file")
		}
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}
	configureLogger(logger, cfg)

	// Discover the score library
	libraryRoot, err := cfg.ResolveLibraryRoot()
	if err != nil {
		logger.WithError(err).Fatal("Score library not found")
	}
	dataDir := config.DataDir(libraryRoot)

	// Load practice status and apply on-launch decay
	store := status.NewStore(dataDir)
	store.SetLogger(logger)
	store.SetDefaults(cfg.Practice.DefaultInstrument, cfg.Practice.DefaultDecayRate)
	state := store.Load()

	decayed := status.ApplyDecay(state, time.Now())
	if decayed > 0 {
		logger.WithField("items", decayed).Info("Applied score decay")
	}

	// Discover sets, tunes, and parts
	scanner := discovery.NewScanner(cfg.Library.Instruments)
	scanner.SetLogger(logger)

	sets, err := scanner.Scan(libraryRoot, dataDir, state)
	if err != nil {
		logger.WithError(err).Fatal("Error scanning score library")
	}

	inserted := status.Merge(state, sets)
	if err := store.Save(state); err != nil {
		logger.WithError(err).Fatal("Error saving practice status")
	}

	logger.WithFields(logrus.Fields{
		"library_root": libraryRoot,
		"sets":         len(sets),
		"new_items":    inserted,
	}).Info("Library scanned")

	switch {
	case *practiceID != "":
		runPractice(logger, cfg, store, state, sets, *practiceID, *instrument)

	case *watchMode:
		runWatch(logger, store, state, scanner, libraryRoot, dataDir)

	default:
		printLibrary(sets, state)
	}
}

// configureLogger applies the logging section of the config.
func configureLogger(logger *logrus.Logger, cfg *config.Config) {
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Logging.File != "" {
		if f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			logger.SetOutput(f)
		} else {
			logger.WithError(err).Warn("Could not open log file, logging to stderr")
		}
	}
}

// runWatch keeps the process alive, rescanning and re-merging whenever the
// library tree changes, until interrupted.
func runWatch(logger *logrus.Logger, store *status.Store, state *models.State, scanner *discovery.Scanner, libraryRoot, dataDir string) {
	w := watcher.NewWatcher(libraryRoot, func() {
		sets, err := scanner.Scan(libraryRoot, dataDir, state)
		if err != nil {
			logger.WithError(err).Error("Rescan failed")
			return
		}
		inserted := status.Merge(state, sets)
		if inserted > 0 {
			if err := store.Save(state); err != nil {
				logger.WithError(err).Error("Error saving practice status")
				return
			}
		}
		logger.WithFields(logrus.Fields{
			"sets":      len(sets),
			"new_items": inserted,
		}).Info("Library rescanned")
	})
	w.SetLogger(logger)

	if err := w.Start(); err != nil {
		logger.WithError(err).Fatal("Error starting library watcher")
	}
	defer w.Stop()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Info("Received shutdown signal")
}

// runPractice opens the item's score and recording, then reads session
// outcomes from stdin until the session ends.
func runPractice(logger *logrus.Logger, cfg *config.Config, store *status.Store, state *models.State, sets []models.SetRecord, itemID, instrument string) {
	itemType, setRec, tune, part, ok := findItem(sets, itemID)
	if !ok {
		logger.WithField("item_id", itemID).Fatal("Item not found in the library")
	}

	if instrument == "" {
		instrument = state.Instrument(setRec.ID.String())
	}
	if !cfg.IsKnownInstrument(instrument) {
		logger.WithField("instrument", instrument).Fatal("Unknown instrument")
	}

	tracker := session.NewTracker(state)
	tracker.SetLogger(logger)

	if cfg.History.Enabled {
		ledger, err := history.NewHistory(cfg.History.Path)
		if err != nil {
			logger.WithError(err).Warn("Practice history unavailable")
		} else {
			defer ledger.Close()
			tracker.SetRecorder(ledger)
		}
	}

	resolver := assets.NewResolver()
	resolver.SetLogger(logger)

	var pdfPath, wavPath string
	switch itemType {
	case models.TypePart:
		pdfPath, wavPath = assets.PartAssets(*part)
	case models.TypeTune:
		pdfPath, wavPath = resolver.TuneAssets(setRec.Path, tune.Name, instrument)
	}
	resolver.OpenAssets(pdfPath, wavPath)

	s := tracker.Start(itemType, itemID, setRec.ID.String(), instrument)
	if err := store.Save(state); err != nil {
		logger.WithError(err).Error("Error saving practice status")
	}

	fmt.Printf("Practicing %s on %s\n", itemID, instrument)
	if wavPath != "" {
		if secs, err := assets.WAVDuration(wavPath); err == nil {
			fmt.Printf("Recording length %d:%02d\n", secs/60, secs%60)
		} else {
			logger.WithError(err).WithField("path", wavPath).Debug("Could not read recording length")
		}
	}
	fmt.Println("s = success, f = fail, q = end session")

	input := bufio.NewScanner(os.Stdin)
	for input.Scan() {
		switch strings.TrimSpace(strings.ToLower(input.Text())) {
		case "s":
			streak, score := tracker.Success(s)
			fmt.Printf("  streak %d, score %.1f\n", streak, score)
		case "f":
			tracker.Fail(s)
			fmt.Println("  streak reset")
		case "q":
			if err := store.Save(state); err != nil {
				logger.WithError(err).Error("Error saving practice status")
			}
			return
		}
		if err := store.Save(state); err != nil {
			logger.WithError(err).Error("Error saving practice status")
		}
	}
}

// findItem locates a tune or part by its full id across the discovered sets,
// returning the matched tune or part record alongside its owning set.
func findItem(sets []models.SetRecord, itemID string) (models.ItemType, *models.SetRecord, *models.TuneRef, *models.PartRecord, bool) {
	for i := range sets {
		for j := range sets[i].Tunes {
			if sets[i].Tunes[j].ID.String() == itemID {
				return models.TypeTune, &sets[i], &sets[i].Tunes[j], nil, true
			}
		}
		for j := range sets[i].Parts {
			if sets[i].Parts[j].FullID.String() == itemID {
				return models.TypePart, &sets[i], nil, &sets[i].Parts[j], true
			}
		}
	}
	return "", nil, nil, nil, false
}

// printLibrary writes a plain summary of the discovered library with each
// item's current streak and score.
func printLibrary(sets []models.SetRecord, state *models.State) {
	for _, set := range sets {
		fmt.Printf("%s / %s\n", set.SectionName, set.FolderName)
		for _, tune := range set.Tunes {
			id := tune.ID.String()
			item := state.Item(id)
			if item != nil {
				fmt.Printf("  %-50s streak %2d  score %5.1f\n", tune.Name, item.Streak, item.Score)
			} else {
				fmt.Printf("  %s\n", tune.Name)
			}
		}
		for _, part := range set.Parts {
			id := part.FullID.String()
			item := state.Item(id)
			if item != nil {
				fmt.Printf("    [%s] %-40s streak %2d\n", part.Label, part.ShortLabel, item.Streak)
			} else {
				fmt.Printf("    [%s] %s\n", part.Label, part.ShortLabel)
			}
		}
	}
}
