// Package imagery downloads processed orthomosaic exports from the imagery
// provider's delivery API. It is a boundary collaborator: the pipeline itself
// only ever sees rasters that are already on disk.
package imagery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/cache"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/properties"
	"golang.org/x/oauth2/clientcredentials"
)

const requestRetries = 10

// Product identifies which orthomosaic export of a session to download.
type Product string

const (
	ProductMultispectral Product = "multispectral"
	ProductRGB           Product = "rgb"
)

// DownloadOrthomosaic fetches one session export and writes it under the
// campaign folder layout the discovery code expects, returning the file path.
// Responses are cached so re-running a campaign does not re-download
// already-delivered mosaics.
func DownloadOrthomosaic(campaign, date string, product Product) (string, error) {
	fileCache := cache.NewFileCache[[]byte]("imagery_cache", 30*24*time.Hour)
	cacheKey := fileCache.GenerateKey(campaign, date, string(product))

	content, ok := fileCache.Get(cacheKey)
	if !ok {
		var err error
		content, err = requestOrthomosaic(campaign, date, product)
		if err != nil {
			return "", err
		}
		if err := fileCache.Set(cacheKey, content); err != nil {
			fmt.Printf("Failed to cache orthomosaic download: %v\n", err)
		}
	}

	sessionDir := filepath.Join(properties.RootPath(), "data", "campaigns", campaign, date)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}

	suffix := "rgb"
	if product == ProductMultispectral {
		suffix = "ms"
	}
	outputPath := filepath.Join(sessionDir, fmt.Sprintf("%s_%s_%s.tif", campaign, date, suffix))
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write orthomosaic file: %w", err)
	}
	return outputPath, nil
}

func requestOrthomosaic(campaign, date string, product Product) ([]byte, error) {
	clientID := os.Getenv("IMAGERY_CLIENT_ID")
	clientSecret := os.Getenv("IMAGERY_CLIENT_SECRET")
	tokenURL := os.Getenv("IMAGERY_TOKEN_URL")
	apiURL := os.Getenv("IMAGERY_API_URL")

	if clientID == "" || clientSecret == "" || tokenURL == "" || apiURL == "" {
		return nil, fmt.Errorf("missing required environment variables: IMAGERY_CLIENT_ID, IMAGERY_CLIENT_SECRET, IMAGERY_TOKEN_URL or IMAGERY_API_URL")
	}

	requestPayload := map[string]interface{}{
		"campaign": campaign,
		"date":     date,
		"product":  string(product),
		"format":   "image/tiff",
	}
	requestBody, err := json.Marshal(requestPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %v", err)
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := config.Client(context.Background())

	var response *http.Response
	for attempt := 1; attempt <= requestRetries; attempt++ {
		response, err = httpClient.Post(apiURL, "application/json", bytes.NewBuffer(requestBody))
		if err == nil && response.StatusCode == http.StatusOK {
			break
		}

		if response != nil {
			body, _ := io.ReadAll(response.Body)
			bodyStr := string(body)
			response.Body.Close()
			response = nil
			if strings.Contains(bodyStr, "403") {
				return nil, fmt.Errorf("unauthorized access, check your client ID and secret")
			}
			fmt.Printf("Attempt %d failed: %s\n", attempt, bodyStr)
		} else {
			fmt.Printf("Attempt %d failed: %v\n", attempt, err)
		}

		time.Sleep(5 * time.Second)
	}
	if response == nil {
		return nil, fmt.Errorf("failed to request orthomosaic after %d attempts: %v", requestRetries, err)
	}
	defer response.Body.Close()

	content, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}
	return content, nil
}
