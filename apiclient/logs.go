package apiclient

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	clienterrors "github.com/PalashJyoti/mindsight-client/internal/errors"
	"github.com/PalashJyoti/mindsight-client/internal/utils"
	"github.com/pkg/errors"
)

// DetectionLog is one persisted negative-emotion detection
type DetectionLog struct {
	ID          int             `json:"id"`
	CameraID    int             `json:"camera_id"`
	CameraLabel string          `json:"camera_label"`
	Emotion     string          `json:"emotion"`
	Confidence  *float64        `json:"confidence,omitempty"`
	ImagePath   string          `json:"image_path,omitempty"`
	Timestamp   utils.Timestamp `json:"timestamp"`
}

type LogService struct {
	client *Client
}

func (c *Client) Logs() *LogService {
	return &LogService{client: c}
}

func (s *LogService) List(ctx context.Context) ([]DetectionLog, error) {
	var logs []DetectionLog
	if err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: RouteDetectionLogs}, &logs); err != nil {
		return nil, errors.Wrap(err, "[Logs.List]")
	}
	return logs, nil
}

func (s *LogService) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return errors.Wrapf(clienterrors.ErrInvalidID, "[Logs.Delete] %d", id)
	}
	err := s.client.Do(ctx, Request{Method: http.MethodDelete, Path: fmt.Sprintf(RouteDetectionLog, id)}, nil)
	return errors.Wrap(err, "[Logs.Delete]")
}

// Image downloads the face crop saved with a detection.
func (s *LogService) Image(ctx context.Context, id int) ([]byte, string, error) {
	if id <= 0 {
		return nil, "", errors.Wrapf(clienterrors.ErrInvalidID, "[Logs.Image] %d", id)
	}
	data, contentType, err := s.client.DoRaw(ctx, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf(RouteDetectionLogImage, id),
		Header: http.Header{"Accept": []string{"image/*"}},
	})
	if err != nil {
		return nil, "", errors.Wrap(err, "[Logs.Image]")
	}
	return data, contentType, nil
}

func (s *LogService) ImageURL(id int) string {
	return s.client.URL(fmt.Sprintf(RouteDetectionLogImage, id))
}

var csvHeader = []string{"id", "timestamp", "camera_id", "camera", "emotion", "confidence"}

// ExportCSV writes logs as CSV, confidence as a percentage with two decimals.
func ExportCSV(w io.Writer, logs []DetectionLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "[ExportCSV] header")
	}

	for _, l := range logs {
		ts := ""
		if !l.Timestamp.IsZero() {
			ts = l.Timestamp.UTC().Format(time.RFC3339)
		}
		confidence := ""
		if l.Confidence != nil {
			confidence = FormatConfidence(*l.Confidence)
		}
		record := []string{
			strconv.Itoa(l.ID),
			ts,
			strconv.Itoa(l.CameraID),
			l.CameraLabel,
			l.Emotion,
			confidence,
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "[ExportCSV] log %d", l.ID)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "[ExportCSV] flush")
}
