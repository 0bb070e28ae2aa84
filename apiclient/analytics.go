package apiclient

import (
	"context"
	"encoding/base64"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Detection is the model's answer for a single frame
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// EmotionSummary counts detections of one emotion
type EmotionSummary struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

type AnalyticsService struct {
	client *Client
}

func (c *Client) Analytics() *AnalyticsService {
	return &AnalyticsService{client: c}
}

type detectRequest struct {
	Image string `json:"image"`
}

// Detect classifies one captured frame. The image is sent as a data URL,
// see ImageDataURL. A nil Detection means no face was found.
func (s *AnalyticsService) Detect(ctx context.Context, imageDataURL string) (*Detection, error) {
	if !strings.HasPrefix(imageDataURL, "data:image/") {
		return nil, errors.New("[Analytics.Detect] image must be a data:image/... URL")
	}

	var d Detection
	err := s.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   RouteEmotionDetect,
		Body:   detectRequest{Image: imageDataURL},
	}, &d)
	if err != nil {
		return nil, errors.Wrap(err, "[Analytics.Detect]")
	}
	if d.Label == "" {
		return nil, nil
	}
	return &d, nil
}

// ImageDataURL encodes raw image bytes the way a captured canvas frame is sent.
func ImageDataURL(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Summarize counts logs per emotion, most frequent first, ties by name.
func Summarize(logs []DetectionLog) []EmotionSummary {
	counts := make(map[string]int)
	for _, l := range logs {
		emotion := strings.ToLower(strings.TrimSpace(l.Emotion))
		if emotion == "" {
			continue
		}
		counts[emotion]++
	}

	summary := make([]EmotionSummary, 0, len(counts))
	for emotion, count := range counts {
		summary = append(summary, EmotionSummary{Emotion: emotion, Count: count})
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].Count != summary[j].Count {
			return summary[i].Count > summary[j].Count
		}
		return summary[i].Emotion < summary[j].Emotion
	})
	return summary
}

// Summary fetches the logs and aggregates them.
func (s *AnalyticsService) Summary(ctx context.Context) ([]EmotionSummary, error) {
	logs, err := s.client.Logs().List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Analytics.Summary]")
	}
	return Summarize(logs), nil
}

var hundred = decimal.NewFromInt(100)

// FormatConfidence renders a 0..1 model confidence as "87.50%".
func FormatConfidence(c float64) string {
	return decimal.NewFromFloat(c).Mul(hundred).StringFixed(2) + "%"
}
