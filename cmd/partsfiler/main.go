package main

import (
	"flag"
	"os"

	"reprise/internal/config"
	"reprise/internal/organizer"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "./reprise.toml", "path to configuration file")
	downloadsDir := flag.String("downloads", "", "downloads directory (overrides library.downloads_dir)")
	dryRun := flag.Bool("dry-run", false, "log planned moves without touching any file")
	flag.Parse()

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

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}

	libraryRoot, err := cfg.ResolveLibraryRoot()
	if err != nil {
		logger.WithError(err).Fatal("Score library not found")
	}

	downloads := *downloadsDir
	if downloads == "" {
		downloads = cfg.Library.DownloadsDir
	}
	if downloads == "" {
		logger.Fatal("No downloads directory configured. Set library.downloads_dir or pass -downloads.")
	}
	if _, err := os.Stat(downloads); os.IsNotExist(err) {
		logger.WithField("downloads_dir", downloads).Fatal("Downloads directory does not exist")
	}

	org := organizer.NewOrganizer(downloads, libraryRoot, cfg.Library.Instruments)
	org.SetLogger(logger)

	stats := org.OrganizeDownloads(*dryRun, nil)
	logger.WithFields(logrus.Fields{
		"organized": stats.Organized,
		"errors":    stats.Errors,
		"dry_run":   *dryRun,
	}).Info("Organizing complete")
}
