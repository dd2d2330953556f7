package sources

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"

	"github.com/dlaveaga/go-guidedog/pkg/hazard"
)

// HOGDetector captures frames from a camera device and detects pedestrians
// with OpenCV's HOG people detector. It is an ObstacleSource producing
// pixel-space person boxes.
type HOGDetector struct {
	mu     sync.Mutex // protects capture and inference
	cap    *gocv.VideoCapture
	hog    gocv.HOGDescriptor
	img    gocv.Mat
	closed bool
	logger *slog.Logger
}

// NewHOGDetector opens the capture device (an int index or a device path)
// and prepares the default people detector.
func NewHOGDetector(device interface{}, logger *slog.Logger) (*HOGDetector, error) {
	cap, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("sources: open capture %v: %w", device, err)
	}

	hog := gocv.NewHOGDescriptor()
	if err := hog.SetSVMDetector(gocv.HOGDefaultPeopleDetector()); err != nil {
		hog.Close()
		cap.Close()
		return nil, fmt.Errorf("sources: set people detector: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &HOGDetector{
		cap:    cap,
		hog:    hog,
		img:    gocv.NewMat(),
		logger: logger.With("component", "sources.hog"),
	}, nil
}

// Frame grabs one frame and runs detection on it.
func (d *HOGDetector) Frame(ctx context.Context) ([]hazard.Obstacle, int, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, 0, 0, ErrSourceClosed
	}
	if ok := d.cap.Read(&d.img); !ok || d.img.Empty() {
		return nil, 0, 0, ErrFrameUnavailable
	}

	width := d.img.Cols()
	height := d.img.Rows()

	rects := d.hog.DetectMultiScale(d.img)
	obstacles := make([]hazard.Obstacle, 0, len(rects))
	for _, r := range rects {
		obstacles = append(obstacles, hazard.Obstacle{
			Left:       float64(r.Min.X),
			Top:        float64(r.Min.Y),
			Right:      float64(r.Max.X),
			Bottom:     float64(r.Max.Y),
			Label:      "person",
			Confidence: 1,
		})
	}
	if len(obstacles) > 0 {
		d.logger.Debug("people detected", "count", len(obstacles))
	}
	return obstacles, width, height, nil
}

// Close releases the capture device and detector.
func (d *HOGDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.img.Close()
	if err := d.hog.Close(); err != nil {
		d.cap.Close()
		return err
	}
	return d.cap.Close()
}

var _ ObstacleSource = (*HOGDetector)(nil)
