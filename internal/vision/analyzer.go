// Package vision tags photos with person counts and visible numbers using Google Cloud Vision.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/race-photo-sync/internal/config"
	"github.com/yourusername/race-photo-sync/internal/gcloud"
	"github.com/yourusername/race-photo-sync/internal/models"
	vision "google.golang.org/api/vision/v1"
)

// Vision feature types requested per image
const (
	featureObjects = "OBJECT_LOCALIZATION"
	featureText    = "DOCUMENT_TEXT_DETECTION"
	objectPerson   = "Person"
)

// ImageAnalyzer extracts AI tags from a photo and its crop
type ImageAnalyzer interface {
	Analyze(ctx context.Context, mainURL, cropURL string, confidenceLimit float64) (*models.AIInformation, error)
}

// VisionAnalyzer implements ImageAnalyzer on the Cloud Vision REST API
type VisionAnalyzer struct {
	service *vision.Service
	fetcher *RateLimitedHTTPClient
	logger  *logrus.Logger
}

// NewVisionAnalyzer creates an analyzer. httpClient is optional and bypasses
// authentication for the Vision API when set.
func NewVisionAnalyzer(ctx context.Context, googleCfg *config.GoogleConfig, visionCfg *config.VisionConfig, httpClient *http.Client, logger *logrus.Logger) (*VisionAnalyzer, error) {
	service, err := vision.NewService(ctx, gcloud.ClientOptions(googleCfg, visionCfg.Endpoint, httpClient)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	fetchCfg := DefaultHTTPClientConfig()
	fetchCfg.Timeout = time.Duration(visionCfg.RequestTimeoutSeconds) * time.Second
	fetchCfg.MaxRetries = visionCfg.RetryAttempts
	fetchCfg.RateLimit = visionCfg.RateLimit

	return &VisionAnalyzer{
		service: service,
		fetcher: NewRateLimitedHTTPClient(fetchCfg, logger),
		logger:  logger,
	}, nil
}

// Close releases idle image download connections
func (a *VisionAnalyzer) Close() error {
	return a.fetcher.Close()
}

// Analyze downloads both images and runs object and text detection.
// Persons and text come from the main image; crop numbers and text from the crop.
// Only objects and words scoring above confidenceLimit are kept.
func (a *VisionAnalyzer) Analyze(ctx context.Context, mainURL, cropURL string, confidenceLimit float64) (*models.AIInformation, error) {
	a.logger.WithField("image", mainURL).Info("Analyzing photo")

	mainImage, err := a.fetcher.Fetch(ctx, mainURL)
	if err != nil {
		return nil, fmt.Errorf("could not load main image: %w", err)
	}
	cropImage, err := a.fetcher.Fetch(ctx, cropURL)
	if err != nil {
		return nil, fmt.Errorf("could not load crop image: %w", err)
	}

	resp, err := a.service.Images.Annotate(&vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(mainImage)},
				Features: []*vision.Feature{{Type: featureObjects}, {Type: featureText}},
			},
			{
				Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(cropImage)},
				Features: []*vision.Feature{{Type: featureText}},
			},
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("vision annotate failed: %w", err)
	}
	if len(resp.Responses) != 2 {
		return nil, fmt.Errorf("vision annotate returned %d responses, expected 2", len(resp.Responses))
	}

	for _, r := range resp.Responses {
		if r.Error != nil && r.Error.Message != "" {
			return nil, fmt.Errorf("vision error: %s, see: https://cloud.google.com/apis/design/errors", r.Error.Message)
		}
	}

	info := &models.AIInformation{
		Persons:       countPersons(resp.Responses[0], confidenceLimit),
		AINumbers:     []int{},
		AIText:        []string{},
		AICropNumbers: []int{},
		AICropText:    []string{},
	}
	info.AINumbers, info.AIText = splitWords(resp.Responses[0], confidenceLimit)
	info.AICropNumbers, info.AICropText = splitWords(resp.Responses[1], confidenceLimit)

	return info, nil
}

func countPersons(resp *vision.AnnotateImageResponse, confidenceLimit float64) int {
	persons := 0
	for _, obj := range resp.LocalizedObjectAnnotations {
		if obj.Score > confidenceLimit && obj.Name == objectPerson {
			persons++
		}
	}
	return persons
}

// splitWords separates recognized words into numbers and other text
func splitWords(resp *vision.AnnotateImageResponse, confidenceLimit float64) ([]int, []string) {
	numbers := []int{}
	texts := []string{}
	if resp.FullTextAnnotation == nil {
		return numbers, texts
	}

	for _, page := range resp.FullTextAnnotation.Pages {
		for _, block := range page.Blocks {
			for _, paragraph := range block.Paragraphs {
				for _, word := range paragraph.Words {
					if word.Confidence <= confidenceLimit {
						continue
					}
					text := wordText(word)
					if n, ok := parseNumber(text); ok {
						numbers = append(numbers, n)
					} else {
						texts = append(texts, text)
					}
				}
			}
		}
	}
	return numbers, texts
}

func wordText(word *vision.Word) string {
	var sb strings.Builder
	for _, symbol := range word.Symbols {
		sb.WriteString(symbol.Text)
	}
	return sb.String()
}

// parseNumber accepts words made only of decimal digits
func parseNumber(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	for _, r := range text {
		if !unicode.IsDigit(r) {
			return 0, false
		}
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}
