package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vitashop/vitashop/internal/api"
	"github.com/vitashop/vitashop/internal/models"
	"github.com/vitashop/vitashop/internal/testutil"
)

func TestCheckPicture(t *testing.T) {
	tests := []struct {
		mime string
		size int64
		want error
	}{
		{"image/jpeg", 1024, nil},
		{"image/jpg", 1024, nil},
		{"image/png", MaxPictureBytes, nil},
		{"image/webp", 1, nil},
		{"image/gif", 1024, ErrPolicyRejected},
		{"image/svg+xml", 1024, ErrPolicyRejected},
		{"image/png", MaxPictureBytes + 1, ErrPolicyRejected},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.mime, tt.size), func(t *testing.T) {
			err := CheckPicture(testutil.FixtureFile("f", tt.mime, tt.size))
			if !errors.Is(err, tt.want) {
				t.Errorf("CheckPicture = %v, want %v", err, tt.want)
			}
			if tt.want != nil && KindOf(err) != KindPolicyRejected {
				t.Errorf("KindOf = %s", KindOf(err))
			}
		})
	}
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, InitialBackoff: 500 * time.Millisecond, MaxBackoff: 3 * time.Second}

	want := []time.Duration{
		500 * time.Millisecond,
		time.Second,
		2 * time.Second,
		3 * time.Second,
		3 * time.Second,
	}
	for i, w := range want {
		if got := p.Backoff(i + 1); got != w {
			t.Errorf("Backoff(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestRetryPolicy_AtLeastOneAttempt(t *testing.T) {
	if got := (RetryPolicy{}).maxAttempts(); got != 1 {
		t.Errorf("maxAttempts = %d", got)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindNone},
		{api.ErrUnauthorized, KindUnauthorized},
		{fmt.Errorf("wrapped: %w", api.ErrUnauthorized), KindUnauthorized},
		{api.ErrNotFound, KindNotFound},
		{ErrNotProvisioned, KindNotFound},
		{&api.ValidationRejectedError{Fields: models.ErrorSet{models.FieldCity: "x"}}, KindValidationRejected},
		{&PolicyError{Reason: MsgFileTooLarge}, KindPolicyRejected},
		{&api.TransportError{Op: "fetch profile", Status: 500}, KindTransport},
		{errors.New("anything else"), KindTransport},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestNoticeDuration(t *testing.T) {
	if NoticeDuration != 3*time.Second {
		t.Errorf("NoticeDuration = %v", NoticeDuration)
	}
	if noticeAfter != NoticeDuration {
		t.Errorf("notice timer uses %v, want %v", noticeAfter, NoticeDuration)
	}
}
