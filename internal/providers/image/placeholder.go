package image

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

const placeholderURLFormat = "https://images.pexels.com/photos/%d/pexels-photo-%d.jpeg?auto=compress&cs=tinysrgb&w=800"

// Placeholder returns random stock photos in place of real renders.
type Placeholder struct {
	delay time.Duration
	pick  func() int
}

func NewPlaceholder(delay time.Duration) *Placeholder {
	return &Placeholder{
		delay: delay,
		pick:  func() int { return 1500 + rand.Intn(500) },
	}
}

// PlaceholderURL builds the stand-in media reference for a photo id.
func PlaceholderURL(photoID int) string {
	return fmt.Sprintf(placeholderURLFormat, photoID, photoID)
}

func (p *Placeholder) Generate(ctx context.Context, req GenerateRequest) ([]Asset, error) {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	assets := make([]Asset, quantity)
	for i := range assets {
		assets[i] = Asset{
			URL:    PlaceholderURL(p.pick()),
			Format: "image/jpeg",
			Width:  req.Width,
			Height: req.Height,
		}
	}
	if p.delay <= 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return assets, nil
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return assets, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var _ Generator = (*Placeholder)(nil)
