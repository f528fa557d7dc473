package session

import (
	"time"

	"github.com/vitashop/vitashop/internal/media"
)

// MaxPictureBytes is the largest picture accepted for upload.
const MaxPictureBytes = 5 << 20

// NoticeDuration is how long a success notice stays visible.
const NoticeDuration = 3 * time.Second

// noticeAfter is NoticeDuration; tests shorten it.
var noticeAfter = NoticeDuration

var acceptedPictureTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// CheckPicture applies the upload policy to a selected file.
func CheckPicture(f media.File) error {
	if !acceptedPictureTypes[f.MIME] {
		return &PolicyError{Reason: MsgUnsupportedType}
	}
	if f.Size > MaxPictureBytes {
		return &PolicyError{Reason: MsgFileTooLarge}
	}
	return nil
}

// RetryPolicy bounds how often a missing profile is fetched again while the
// backend provisions it.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy waits 0.5s, 1s and 2s between four attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    4,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     4 * time.Second,
	}
}

// Backoff returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.InitialBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

func (p RetryPolicy) maxAttempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}
