package delivery

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gammazero/workerpool"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/campaign"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/indices"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/notification"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/ortho"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/properties"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/raster"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/utils"
	"github.com/ortho-guardian/ortho-guardian-api-poc/output"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// RunCampaign processes every session found under campaignRoot: load the
// MS/RGB pair, align the RGB onto the MS grid, normalize both, compute the
// vegetation indices and export them. Sessions are independent, so they run
// on a worker pool; one failed session is reported and skipped, never fatal.
func RunCampaign(campaignRoot string, workers int, cfg properties.NormalizationConfig) error {
	sessions, err := campaign.ListSessions(campaignRoot)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return fmt.Errorf("no sessions found under %s", campaignRoot)
	}

	campaignName := filepath.Base(campaignRoot)
	resultDir := filepath.Join(properties.RootPath(), "data", "result", campaignName)
	if err := os.MkdirAll(resultDir, 0755); err != nil {
		return fmt.Errorf("failed to create result directory: %w", err)
	}

	if workers < 1 {
		workers = 1
	}
	pool := workerpool.New(workers)
	progressBar := progressbar.Default(int64(len(sessions)), "Processing campaign sessions")

	var allStats []output.IndexStats
	var failures []string
	for _, session := range sessions {
		session := session
		pool.Submit(func() {
			defer progressBar.Add(1)
			stats, err := processSession(session, resultDir, cfg)
			utils.ExecuteWithMutex(func() {
				if err != nil {
					fmt.Printf("Session %s failed: %v\n", session.Date, err)
					failures = append(failures, fmt.Sprintf("%s: %v", session.Date, err))
					return
				}
				allStats = append(allStats, stats...)
			})
		})
	}
	pool.StopWait()

	if len(allStats) > 0 {
		statsPath := filepath.Join(resultDir, "index_stats.csv")
		if err := output.CreateIndexStatsCSV(allStats, statsPath); err != nil {
			return err
		}
		fmt.Println("Index statistics written to", statsPath)
	}

	summary := fmt.Sprintf("Campaign %s: %d/%d sessions processed", campaignName, len(sessions)-len(failures), len(sessions))
	fmt.Println(summary)
	if len(failures) > 0 {
		detail := summary
		for _, f := range failures {
			detail += "\n- " + f
		}
		if err := notification.SendDiscordErrorNotification(detail); err != nil {
			fmt.Printf("Failed to send notification: %v\n", err)
		}
		return fmt.Errorf("%d of %d sessions failed", len(failures), len(sessions))
	}
	if err := notification.SendDiscordSuccessNotification(summary); err != nil {
		fmt.Printf("Failed to send notification: %v\n", err)
	}
	return nil
}

func processSession(session campaign.Session, resultDir string, cfg properties.NormalizationConfig) ([]output.IndexStats, error) {
	msData, msProfile, err := raster.ReadTIFFArray(session.MSPath)
	if err != nil {
		return nil, fmt.Errorf("loading multispectral mosaic: %w", err)
	}

	var rgbData *raster.Array
	var rgbProfile raster.Profile
	if session.RGBPath != "" {
		rgbData, rgbProfile, err = raster.ReadTIFFArray(session.RGBPath)
		if err != nil {
			return nil, fmt.Errorf("loading rgb mosaic: %w", err)
		}
	}

	// The MS grid is the reference grid for the whole session.
	pair := ortho.ProcessSession(msData, msProfile, rgbData, rgbProfile, cfg)
	if pair.MS == nil {
		return nil, fmt.Errorf("alignment failed, session unusable")
	}

	calc, err := indices.NewCalculator(pair.MS, pair.RGB)
	if err != nil {
		return nil, err
	}
	indexMaps := calc.MainIndices()

	stats := make([]output.IndexStats, 0, len(indexMaps))
	names := make([]string, 0, len(indexMaps))
	for name, plane := range indexMaps {
		stats = append(stats, output.ComputeIndexStats(session.Date, name, plane))
		names = append(names, name)
	}

	var eg errgroup.Group
	for name, plane := range indexMaps {
		name, plane := name, plane
		base := filepath.Join(resultDir, fmt.Sprintf("%s_%s", session.Date, name))
		eg.Go(func() error {
			return raster.WriteIndexTIFF(base+".tif", plane, singleBandProfile(msProfile))
		})
		eg.Go(func() error {
			vmin, vmax := displayRange(name, stats)
			return output.CreateIndexImage(plane, base+".png", vmin, vmax)
		})
	}
	eg.Go(func() error {
		return output.CreateFootprintGeoJSON(msProfile, session.Date,
			names, filepath.Join(resultDir, session.Date+"_footprint"))
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("exporting session results: %w", err)
	}
	return stats, nil
}

func singleBandProfile(p raster.Profile) raster.Profile {
	p.Bands = 1
	return p
}

// displayRange picks heatmap bounds: the ratio indices have a fixed physical
// range, the unclipped ones use their observed spread for this session.
func displayRange(name string, stats []output.IndexStats) (float64, float64) {
	switch name {
	case "ndvi", "ndre", "gndvi":
		return -1, 1
	}
	for _, s := range stats {
		if s.Index == name && s.Max > s.Min {
			return s.Min, s.Max
		}
	}
	return -1, 1
}
