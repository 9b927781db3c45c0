// Package vision classifies thumbnail images with Google Cloud Vision
// SafeSearch detection.
package vision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	visionapi "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/happyscroll/verdict-api/internal/domain/repository"
	"github.com/happyscroll/verdict-api/internal/infrastructure/metrics"
)

const (
	downloadTimeout = 15 * time.Second
	detectTimeout   = 30 * time.Second
)

// likelihoodRank orders the SafeSearch likelihood scale for threshold
// comparison. UNKNOWN ranks lowest so an unreported category never flags.
var likelihoodRank = map[visionpb.Likelihood]int{
	visionpb.Likelihood_UNKNOWN:       0,
	visionpb.Likelihood_VERY_UNLIKELY: 1,
	visionpb.Likelihood_UNLIKELY:      2,
	visionpb.Likelihood_POSSIBLE:      3,
	visionpb.Likelihood_LIKELY:        4,
	visionpb.Likelihood_VERY_LIKELY:   5,
}

// ParseThreshold resolves a configured threshold name to a likelihood level.
func ParseThreshold(name string) (visionpb.Likelihood, error) {
	v, ok := visionpb.Likelihood_value[strings.ToUpper(strings.TrimSpace(name))]
	if !ok || v == int32(visionpb.Likelihood_UNKNOWN) {
		return 0, fmt.Errorf("invalid safety threshold %q", name)
	}
	return visionpb.Likelihood(v), nil
}

// Classifier implements repository.ThumbnailClassifier using SafeSearch
// category likelihoods against a configured threshold.
type Classifier struct {
	client    *visionapi.ImageAnnotatorClient
	http      *http.Client
	threshold visionpb.Likelihood
}

// NewClassifier creates a SafeSearch classifier. Credentials come from
// application default credentials (GOOGLE_APPLICATION_CREDENTIALS).
func NewClassifier(ctx context.Context, thresholdName string, opts ...option.ClientOption) (*Classifier, error) {
	threshold, err := ParseThreshold(thresholdName)
	if err != nil {
		return nil, err
	}

	client, err := visionapi.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	return &Classifier{
		client:    client,
		http:      &http.Client{Timeout: downloadTimeout},
		threshold: threshold,
	}, nil
}

// Close releases the underlying gRPC connection.
func (c *Classifier) Close() error {
	return c.client.Close()
}

// Analyze downloads the thumbnail and classifies it. The returned reason
// enumerates flagged categories when unsafe.
func (c *Classifier) Analyze(ctx context.Context, thumbnailURL string) (bool, string, error) {
	img, err := c.downloadImage(ctx, thumbnailURL)
	if err != nil {
		return false, "", err
	}

	annotation, err := c.detectSafeSearch(ctx, img)
	if err != nil {
		return false, "", err
	}

	safe, reason := Evaluate(annotation, c.threshold)
	return safe, reason, nil
}

func (c *Classifier) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrImageFetchFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrImageFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d for %s", repository.ErrImageFetchFailed, resp.StatusCode, imageURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrImageFetchFailed, err)
	}
	return body, nil
}

func (c *Classifier) detectSafeSearch(ctx context.Context, img []byte) (*visionpb.SafeSearchAnnotation, error) {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: img},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_SAFE_SEARCH_DETECTION},
				},
			},
		},
	}

	resp, err := c.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamVision, metrics.UpstreamStatusError).Inc()
		return nil, fmt.Errorf("%w: %v", repository.ErrClassifierUnavailable, err)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamVision, metrics.UpstreamStatusSuccess).Inc()

	if len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return nil, fmt.Errorf("%w: empty annotate response", repository.ErrClassifierUnavailable)
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("%w: %s", repository.ErrClassifierRejected, r0.Error.Message)
	}
	if r0.SafeSearchAnnotation == nil {
		return nil, fmt.Errorf("%w: no safe search annotation", repository.ErrClassifierRejected)
	}
	return r0.SafeSearchAnnotation, nil
}

// forceFailCategories decide the verdict; informational categories are
// surfaced in the reason only.
var (
	forceFailCategories = []string{"adult", "violence", "racy"}
	infoCategories      = []string{"medical", "spoof"}
)

func categoryLikelihoods(a *visionpb.SafeSearchAnnotation) map[string]visionpb.Likelihood {
	return map[string]visionpb.Likelihood{
		"adult":    a.Adult,
		"violence": a.Violence,
		"racy":     a.Racy,
		"medical":  a.Medical,
		"spoof":    a.Spoof,
	}
}

// Evaluate applies the threshold rule to a SafeSearch annotation: any of
// adult/violence/racy at or above the threshold makes the thumbnail unsafe;
// medical/spoof are reported but never force-fail.
func Evaluate(a *visionpb.SafeSearchAnnotation, threshold visionpb.Likelihood) (bool, string) {
	levels := categoryLikelihoods(a)
	bar := likelihoodRank[threshold]

	var flagged, informational []string
	for _, cat := range forceFailCategories {
		if likelihoodRank[levels[cat]] >= bar {
			flagged = append(flagged, cat)
		}
	}
	for _, cat := range infoCategories {
		if likelihoodRank[levels[cat]] >= bar {
			informational = append(informational, cat)
		}
	}
	sort.Strings(flagged)
	sort.Strings(informational)

	if len(flagged) > 0 {
		reason := fmt.Sprintf("Thumbnail flagged as UNSAFE. Detected: %s.", strings.Join(flagged, ", "))
		if len(informational) > 0 {
			reason += fmt.Sprintf(" Also noted: %s.", strings.Join(informational, ", "))
		}
		return false, reason
	}

	reason := "Thumbnail is safe. No inappropriate content detected."
	if len(informational) > 0 {
		reason = fmt.Sprintf("Thumbnail is safe. Informational categories above threshold: %s.", strings.Join(informational, ", "))
	}
	return true, reason
}
