package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vitashop/vitashop/internal/media"
	"github.com/vitashop/vitashop/internal/models"
)

type staticToken string

func (s staticToken) AccessToken() (string, error) {
	if s == "" {
		return "", errors.New("no token")
	}
	return string(s), nil
}

const profileJSON = `{
	"id": "p-1",
	"full_name": "Ada Obi",
	"date_of_birth": "1990-04-12",
	"gender": "female",
	"city": null,
	"emergency_contact_phone": null,
	"allergies": ["dust"],
	"genotype": "AA",
	"blood_group": "O+",
	"height_cm": 170,
	"weight_kg": 64.7,
	"age": 36,
	"bmi": 22.4,
	"height_display": "170 cm",
	"weight_display": "64.7 kg",
	"profile_picture": null
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(staticToken("tok-123"), Options{
		BaseURL:   srv.URL,
		Timeout:   2 * time.Second,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		RequestID: func() string { return "req-1" },
	})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	return c
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(nil, Options{BaseURL: "http://x"}); err == nil {
		t.Error("expected error without token provider")
	}
	if _, err := NewClient(staticToken("t"), Options{BaseURL: "ftp://x"}); err == nil {
		t.Error("expected error for non-http base URL")
	}
}

func TestFetchProfile_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != PathProfile {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("unexpected Authorization %q", got)
		}
		if got := r.Header.Get("X-Request-ID"); got != "req-1" {
			t.Errorf("unexpected X-Request-ID %q", got)
		}
		io.WriteString(w, profileJSON)
	})

	p, err := c.FetchProfile(context.Background())
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}

	if p.ID != "p-1" || p.DisplayName() != "Ada Obi" {
		t.Errorf("unexpected profile %+v", p)
	}
	if p.City != nil {
		t.Errorf("expected null city, got %q", *p.City)
	}
	if p.BMI == nil || *p.BMI != 22.4 {
		t.Errorf("expected bmi 22.4, got %v", p.BMI)
	}
	if p.BMILabel() != models.BMINormal {
		t.Errorf("expected normal weight label, got %q", p.BMILabel())
	}
}

func TestFetchProfile_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusUnauthorized, func(err error) bool { return errors.Is(err, ErrUnauthorized) }},
		{http.StatusForbidden, func(err error) bool { return errors.Is(err, ErrUnauthorized) }},
		{http.StatusNotFound, func(err error) bool { return errors.Is(err, ErrNotFound) }},
		{http.StatusInternalServerError, func(err error) bool {
			var te *TransportError
			return errors.As(err, &te) && te.Status == http.StatusInternalServerError
		}},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := c.FetchProfile(context.Background())
			if !tt.check(err) {
				t.Errorf("status %d: unexpected error %v", tt.status, err)
			}
		})
	}
}

func TestFetchProfile_BadJSONIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>")
	})

	_, err := c.FetchProfile(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestFetchProfile_NetworkFailureIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := NewClient(staticToken("tok"), Options{BaseURL: srv.URL, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	_, err = c.FetchProfile(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestFetchProfile_TimeoutIsTransport(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := NewClient(staticToken("tok"), Options{
		BaseURL: srv.URL,
		Timeout: 50 * time.Millisecond,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	_, err = c.FetchProfile(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError on timeout, got %v", err)
	}
}

func TestRequests_WithoutTokenNeverHitNetwork(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(staticToken(""), Options{BaseURL: srv.URL, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	if _, err := c.FetchProfile(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if err := c.DeleteAccount(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if hits != 0 {
		t.Errorf("expected no requests, got %d", hits)
	}
}

func TestSaveProfile_SendsPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != PathProfile {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body["full_name"] != "Ada Obi" {
			t.Errorf("unexpected full_name %v", body["full_name"])
		}
		if v, ok := body["city"]; !ok || v != nil {
			t.Errorf("expected explicit null city, got %v (present=%v)", v, ok)
		}
		if body["height_cm"] != 170.0 {
			t.Errorf("unexpected height %v", body["height_cm"])
		}

		io.WriteString(w, profileJSON)
	})

	d := models.Draft{FullName: "Ada Obi", HeightCM: "170"}
	p, err := c.SaveProfile(context.Background(), d.Payload())
	if err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if p.ID != "p-1" {
		t.Errorf("unexpected profile id %q", p.ID)
	}
}

func TestSaveProfile_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   models.ErrorSet
	}{
		{
			name:   "errors object with lists",
			status: http.StatusBadRequest,
			body:   `{"errors": {"full_name": ["Too short"], "height_cm": "Out of range"}}`,
			want:   models.ErrorSet{models.FieldFullName: "Too short", models.FieldHeightCM: "Out of range"},
		},
		{
			name:   "errors wins over detail",
			status: http.StatusUnprocessableEntity,
			body:   `{"errors": {"city": "Unknown city"}, "detail": "Invalid input"}`,
			want:   models.ErrorSet{models.FieldCity: "Unknown city"},
		},
		{
			name:   "detail string only",
			status: http.StatusBadRequest,
			body:   `{"detail": "Profile is locked"}`,
			want:   models.ErrorSet{models.FieldGeneral: "Profile is locked"},
		},
		{
			name:   "detail object",
			status: http.StatusBadRequest,
			body:   `{"detail": {"weight_kg": ["Must be positive"]}}`,
			want:   models.ErrorSet{models.FieldWeightKG: "Must be positive"},
		},
		{
			name:   "non field errors",
			status: http.StatusBadRequest,
			body:   `{"errors": {"non_field_errors": ["Try again later"]}}`,
			want:   models.ErrorSet{models.FieldGeneral: "Try again later"},
		},
		{
			name:   "field the form cannot show",
			status: http.StatusBadRequest,
			body:   `{"errors": {"emergency_phone": ["Enter a valid phone number."], "city": "Unknown city"}}`,
			want: models.ErrorSet{
				models.FieldGeneral: "emergency_phone: Enter a valid phone number.",
				models.FieldCity:    "Unknown city",
			},
		},
		{
			name:   "top level field keys",
			status: http.StatusBadRequest,
			body:   `{"city": ["We do not deliver there"], "unrelated": "ignored"}`,
			want:   models.ErrorSet{models.FieldCity: "We do not deliver there"},
		},
		{
			name:   "empty object",
			status: http.StatusBadRequest,
			body:   `{}`,
			want:   models.ErrorSet{models.FieldGeneral: defaultRejection},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.SaveProfile(context.Background(), models.Draft{FullName: "Ada"}.Payload())
			var rej *ValidationRejectedError
			if !errors.As(err, &rej) {
				t.Fatalf("expected ValidationRejectedError, got %v", err)
			}
			if len(rej.Fields) != len(tt.want) {
				t.Fatalf("fields = %v, want %v", rej.Fields, tt.want)
			}
			for f, msg := range tt.want {
				if rej.Fields[f] != msg {
					t.Errorf("field %s = %q, want %q", f, rej.Fields[f], msg)
				}
			}
		})
	}
}

func TestSaveProfile_ServerErrorIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"message": "upstream down"}`)
	})

	_, err := c.SaveProfile(context.Background(), models.Draft{FullName: "Ada"}.Payload())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.Error() != "upstream down" {
		t.Errorf("expected backend message, got %q", te.Error())
	}
}

func TestSaveProfile_NonJSONRejectionIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "bad request")
	})

	_, err := c.SaveProfile(context.Background(), models.Draft{FullName: "Ada"}.Payload())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestUploadPicture(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != PathProfilePicture {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		file, header, err := r.FormFile(PictureField)
		if err != nil {
			t.Fatalf("reading form file: %v", err)
		}
		defer file.Close()

		got, _ := io.ReadAll(file)
		if string(got) != string(data) {
			t.Errorf("unexpected upload bytes %v", got)
		}
		if header.Filename != "me.png" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("unexpected part content type %q", ct)
		}

		io.WriteString(w, `{"profile": {"id": "p-1", "profile_picture": "https://cdn/p-1.png"}}`)
	})

	p, err := c.UploadPicture(context.Background(), media.File{Name: "me.png", MIME: "image/png", Size: int64(len(data)), Data: data})
	if err != nil {
		t.Fatalf("UploadPicture: %v", err)
	}
	if p.ProfilePicture == nil || *p.ProfilePicture != "https://cdn/p-1.png" {
		t.Errorf("unexpected picture %v", p.ProfilePicture)
	}
}

func TestUploadPicture_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"server message", http.StatusRequestEntityTooLarge, `{"message": "File too large"}`, "File too large"},
		{"missing profile", http.StatusOK, `{"ok": true}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.UploadPicture(context.Background(), media.File{Name: "a.png", MIME: "image/png"})
			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("expected TransportError, got %v", err)
			}
			if tt.wantMsg != "" && te.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", te.Error(), tt.wantMsg)
			}
		})
	}
}

func TestDeleteAccount(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodDelete || r.URL.Path != PathDeleteAccount {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.DeleteAccount(context.Background()); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one call, got %d", calls)
	}
}

func TestDeleteAccount_FailureCarriesMessageAndIsNotRetried(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"detail": "Outstanding orders must be settled first"}`)
	})

	err := c.DeleteAccount(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !strings.Contains(te.Error(), "Outstanding orders") {
		t.Errorf("expected backend message, got %q", te.Error())
	}
	if calls != 1 {
		t.Errorf("expected exactly one call, got %d", calls)
	}
}
