package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	tpl "github.com/oksasatya/go-users-auth-api/pkg/mailer/templates"
)

type sent struct{ to, subject, text, html string }

type fakeSender struct {
	out []sent
	err error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.out = append(f.out, sent{to, subject, text, html})
	return nil
}

func encode(t *testing.T, job EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestProcess_Template(t *testing.T) {
	s := &fakeSender{}
	job := EmailJob{To: "a@x.com", Template: tpl.Welcome, Data: tpl.NewWelcomeData("Users", "Ann", "a@x.com")}

	if err := Process(context.Background(), s, encode(t, job)); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(s.out) != 1 || s.out[0].to != "a@x.com" || !strings.Contains(s.out[0].subject, "Users") {
		t.Fatalf("unexpected send: %+v", s.out)
	}
}

func TestProcess_BadJobs(t *testing.T) {
	s := &fakeSender{}
	cases := map[string][]byte{
		"not json":         []byte("{"),
		"no recipient":     encode(t, EmailJob{Subject: "s", Text: "t"}),
		"unknown template": encode(t, EmailJob{To: "a@x.com", Template: "verify_email"}),
		"empty message":    encode(t, EmailJob{To: "a@x.com"}),
	}
	for name, body := range cases {
		if err := Process(context.Background(), s, body); !errors.Is(err, ErrBadJob) {
			t.Errorf("%s: expected ErrBadJob, got %v", name, err)
		}
	}
	if len(s.out) != 0 {
		t.Fatal("bad jobs must not be sent")
	}
}

func TestProcess_SendFailureIsRetryable(t *testing.T) {
	boom := errors.New("mailgun down")
	s := &fakeSender{err: boom}
	err := Process(context.Background(), s, encode(t, EmailJob{To: "a@x.com", Subject: "s", Text: "t"}))
	if !errors.Is(err, boom) || errors.Is(err, ErrBadJob) {
		t.Fatalf("expected send error, got %v", err)
	}
}
