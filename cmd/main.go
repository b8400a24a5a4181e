package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/delivery"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/imagery"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/notification"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/properties"
)

// fetchSessions downloads the MS and RGB exports for the given flight dates
// into the campaign folder layout, returning the campaign root to process.
func fetchSessions(campaign string, dates []string) (string, error) {
	var root string
	for _, date := range dates {
		msPath, err := imagery.DownloadOrthomosaic(campaign, date, imagery.ProductMultispectral)
		if err != nil {
			return "", fmt.Errorf("downloading %s multispectral export: %w", date, err)
		}
		if _, err := imagery.DownloadOrthomosaic(campaign, date, imagery.ProductRGB); err != nil {
			// A missing color capture is survivable; the session runs MS-only.
			fmt.Printf("\033[33mNo RGB export for %s: %v\033[0m\n", date, err)
		}
		root = filepath.Dir(filepath.Dir(msPath))
	}
	return root, nil
}

func printBanner() {
	figure1 := figure.NewFigure("Ortho", "isometric1", true)
	figure2 := figure.NewFigure("Guardian", "isometric1", true)
	bannercolor.Green(figure1.String())
	bannercolor.Green(figure2.String())
	fmt.Println()
}

func run(campaignRoot, configPath string, workers int) error {
	defer func() {
		if r := recover(); r != nil {
			pc, file, line, ok := runtime.Caller(3)
			var location string
			if ok {
				fn := runtime.FuncForPC(pc)
				location = fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
			} else {
				location = "Unknown location"
			}

			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mLocation: %s\033[0m\n", location)

			stack := debug.Stack()
			errMessage := fmt.Sprintf("Ortho Guardian panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, stack)
			if err := notification.SendDiscordErrorNotification(errMessage); err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
		}
	}()

	cfg, err := properties.LoadNormalizationConfig(configPath)
	if err != nil {
		return err
	}
	return delivery.RunCampaign(campaignRoot, workers, cfg)
}

func main() {
	campaignRoot := flag.String("root", "", "campaign root directory containing dated session folders")
	configPath := flag.String("config", "", "optional YAML file overriding normalization thresholds")
	workers := flag.Int("workers", 4, "number of sessions to process in parallel")
	fetchCampaign := flag.String("fetch", "", "campaign name to download from the imagery delivery API instead of reading -root")
	fetchDates := flag.String("dates", "", "comma-separated flight dates to download with -fetch")
	flag.Parse()

	if *campaignRoot == "" && *fetchCampaign == "" {
		fmt.Println("\033[31mEither -root or -fetch is required\033[0m")
		flag.Usage()
		os.Exit(1)
	}

	err := godotenv.Load("../../.env")
	if err != nil {
		if err = godotenv.Load("../.env"); err != nil {
			if err = godotenv.Load(".env"); err != nil {
				fmt.Println("\033[33mNo .env file found, relying on process environment\033[0m")
			}
		}
	}

	godal.RegisterAll()
	printBanner()

	root := *campaignRoot
	if *fetchCampaign != "" {
		if *fetchDates == "" {
			fmt.Println("\033[31m-fetch requires -dates\033[0m")
			os.Exit(1)
		}
		root, err = fetchSessions(*fetchCampaign, strings.Split(*fetchDates, ","))
		if err != nil {
			fmt.Printf("\033[31mImagery download failed: %s\033[0m\n", err.Error())
			os.Exit(1)
		}
	}

	if err := run(root, *configPath, *workers); err != nil {
		fmt.Printf("\n\033[31mCampaign processing failed: %s\033[0m\n", err.Error())
		os.Exit(1)
	}
	fmt.Println("\033[32mCampaign processing finished successfully\033[0m")
}
