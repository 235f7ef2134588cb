package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/dreamwise/dreamwise/internal/db/dbtest"
	"github.com/dreamwise/dreamwise/internal/model"
	"github.com/dreamwise/dreamwise/internal/repository"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type services struct {
	db           *sqlx.DB
	clock        *clock
	accounts     *AccountService
	verification *VerificationService
}

func newServices(t *testing.T) *services {
	t.Helper()
	return servicesOn(dbtest.New(t))
}

// newFileServices runs against a file database with the deployment pool settings.
func newFileServices(t *testing.T) *services {
	t.Helper()
	return servicesOn(dbtest.NewFile(t))
}

func servicesOn(database *sqlx.DB) *services {
	c := newClock()

	accounts := NewAccountService(repository.NewAccountRepository(database), NewPasswordHasher(bcrypt.MinCost))
	accounts.now = c.Now

	verification := NewVerificationService(repository.NewVerificationCodeRepository(database), 0, 0)
	verification.now = c.Now

	return &services{
		db:           database,
		clock:        c,
		accounts:     accounts,
		verification: verification,
	}
}

type sentMail struct {
	kind    string
	to      string
	code    string
	purpose model.Purpose
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) record(mail sentMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, email, code string, purpose model.Purpose, _ time.Duration) error {
	return m.record(sentMail{kind: "code", to: email, code: code, purpose: purpose})
}

func (m *fakeMailer) SendWelcomeEmail(_ context.Context, email, _ string) error {
	return m.record(sentMail{kind: "welcome", to: email})
}

func (m *fakeMailer) SendPasswordChangedEmail(_ context.Context, email, _ string) error {
	return m.record(sentMail{kind: "password_changed", to: email})
}

// lastCode returns the most recent code mailed to email.
func (m *fakeMailer) lastCode(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].kind == "code" && m.sent[i].to == email {
			return m.sent[i].code
		}
	}
	return ""
}

func (m *fakeMailer) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, mail := range m.sent {
		if mail.kind == kind {
			n++
		}
	}
	return n
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}
