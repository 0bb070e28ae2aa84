package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	clienterrors "github.com/PalashJyoti/mindsight-client/internal/errors"
	"github.com/PalashJyoti/mindsight-client/internal/utils"
	"github.com/pkg/errors"
)

type CameraStatus string

const (
	CameraActive   CameraStatus = "Active"
	CameraInactive CameraStatus = "Inactive"
)

type Camera struct {
	ID        int             `json:"id"`
	Label     string          `json:"label"`
	IP        string          `json:"ip"`
	Src       string          `json:"src"` // Video source (rtsp url, file...)
	Status    CameraStatus    `json:"status"`
	CreatedAt utils.Timestamp `json:"created_at"`
	UpdatedAt utils.Timestamp `json:"updated_at"`
}

// CameraUpdate changes only the fields that are set
type CameraUpdate struct {
	Label  *string       `json:"label,omitempty"`
	IP     *string       `json:"ip,omitempty"`
	Src    *string       `json:"src,omitempty"`
	Status *CameraStatus `json:"status,omitempty"`
}

type CameraService struct {
	client *Client
}

func (c *Client) Cameras() *CameraService {
	return &CameraService{client: c}
}

func (s *CameraService) List(ctx context.Context) ([]Camera, error) {
	var cameras []Camera
	if err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: RouteCameras}, &cameras); err != nil {
		return nil, errors.Wrap(err, "[Cameras.List]")
	}
	return cameras, nil
}

// Add registers a camera. Label, IP and source are all required.
func (s *CameraService) Add(ctx context.Context, label, ip, src string) (*Camera, error) {
	label, ip, src = strings.TrimSpace(label), strings.TrimSpace(ip), strings.TrimSpace(src)
	if label == "" || ip == "" || src == "" {
		return nil, errors.Wrap(clienterrors.ErrMissingField, "[Cameras.Add] label, ip and src are required")
	}

	var camera Camera
	err := s.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   RouteCameraAdd,
		Body:   CameraUpdate{Label: utils.Ptr(label), IP: utils.Ptr(ip), Src: utils.Ptr(src)},
	}, &camera)
	if err != nil {
		return nil, errors.Wrap(err, "[Cameras.Add]")
	}
	return &camera, nil
}

func (s *CameraService) Update(ctx context.Context, id int, update CameraUpdate) (*Camera, error) {
	if id <= 0 {
		return nil, errors.Wrapf(clienterrors.ErrInvalidID, "[Cameras.Update] %d", id)
	}

	var camera Camera
	err := s.client.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf(RouteCameraUpdate, id),
		Body:   update,
	}, &camera)
	if err != nil {
		return nil, errors.Wrap(err, "[Cameras.Update]")
	}
	return &camera, nil
}

func (s *CameraService) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return errors.Wrapf(clienterrors.ErrInvalidID, "[Cameras.Delete] %d", id)
	}
	err := s.client.Do(ctx, Request{Method: http.MethodDelete, Path: fmt.Sprintf(RouteCameraDelete, id)}, nil)
	return errors.Wrap(err, "[Cameras.Delete]")
}

// FeedURL is the MJPEG stream of a camera, opened directly by a viewer.
func (s *CameraService) FeedURL(id int) string {
	return s.client.URL(fmt.Sprintf(RouteCameraFeed, id))
}
