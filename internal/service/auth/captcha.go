package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/sygemat/provider-portal/internal/domain/models"
)

// ErrChallengeNotFound covers unknown, expired and already-consumed
// challenges alike; the client just requests a fresh one.
var ErrChallengeNotFound = errors.New("captcha challenge not found")

const (
	captchaGridSize = 9
	captchaTTL      = 5 * time.Minute
	verifiedTTL     = 5 * time.Minute
)

type challenge struct {
	key      string
	category string
	targets  map[int]struct{}
	issued   time.Time
}

// CaptchaManager issues 3x3 image-grid challenges and tracks the one-shot
// verified flag a passed challenge grants. Challenges are single-use.
type CaptchaManager struct {
	clock Clock

	mu         sync.Mutex
	challenges map[string]*challenge
	verified   map[string]time.Time
}

// NewCaptchaManager builds an empty manager.
func NewCaptchaManager(clock Clock) *CaptchaManager {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CaptchaManager{
		clock:      clock,
		challenges: make(map[string]*challenge),
		verified:   make(map[string]time.Time),
	}
}

// NewChallenge creates a fresh challenge for a client key: every image of one
// randomly chosen target category plus fillers from unrelated categories,
// shuffled into a 9-tile grid.
func (m *CaptchaManager) NewChallenge(_ context.Context, key string) (*models.CaptchaChallenge, error) {
	set := captchaImageSets[mrand.Intn(len(captchaImageSets))]

	images := make([]models.CaptchaImage, 0, captchaGridSize)
	targets := make(map[int]struct{}, len(set.targetURLs))

	for _, url := range set.targetURLs {
		images = append(images, models.CaptchaImage{URL: url})
	}
	fillers := append([]string(nil), set.fillerURLs...)
	mrand.Shuffle(len(fillers), func(i, j int) { fillers[i], fillers[j] = fillers[j], fillers[i] })
	for _, url := range fillers[:captchaGridSize-len(set.targetURLs)] {
		images = append(images, models.CaptchaImage{URL: url})
	}

	mrand.Shuffle(len(images), func(i, j int) { images[i], images[j] = images[j], images[i] })
	for i := range images {
		images[i].ID = i
		if isTarget(set, images[i].URL) {
			targets[i] = struct{}{}
		}
	}

	id, err := randomID()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.expireLocked()
	m.challenges[id] = &challenge{
		key:      key,
		category: set.category,
		targets:  targets,
		issued:   m.clock.Now(),
	}
	m.mu.Unlock()

	return &models.CaptchaChallenge{
		ID:       id,
		Category: set.label,
		Images:   images,
	}, nil
}

// Verify checks an answer against its challenge. Success requires selecting
// every target tile and no filler tile. The challenge is consumed either way;
// on success the key gains a one-shot verified flag.
func (m *CaptchaManager) Verify(_ context.Context, answer models.CaptchaAnswer) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expireLocked()
	ch, ok := m.challenges[answer.ChallengeID]
	if !ok || ch.key != answer.Key {
		return false, ErrChallengeNotFound
	}
	delete(m.challenges, answer.ChallengeID)

	if len(answer.Selections) == 0 {
		return false, nil
	}

	selected := make(map[int]struct{}, len(answer.Selections))
	for _, id := range answer.Selections {
		if _, isTarget := ch.targets[id]; !isTarget {
			return false, nil
		}
		selected[id] = struct{}{}
	}
	if len(selected) != len(ch.targets) {
		return false, nil
	}

	m.verified[answer.Key] = m.clock.Now().Add(verifiedTTL)
	return true, nil
}

// ConsumeVerified takes the one-shot verified flag for a key if present.
func (m *CaptchaManager) ConsumeVerified(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.verified[key]
	if !ok {
		return false
	}
	delete(m.verified, key)
	return expiry.After(m.clock.Now())
}

// ClearVerified drops any pending flag, used when a login attempt fails so
// the next submission needs a fresh challenge.
func (m *CaptchaManager) ClearVerified(key string) {
	m.mu.Lock()
	delete(m.verified, key)
	m.mu.Unlock()
}

func (m *CaptchaManager) expireLocked() {
	now := m.clock.Now()
	for id, ch := range m.challenges {
		if now.Sub(ch.issued) > captchaTTL {
			delete(m.challenges, id)
		}
	}
	for key, expiry := range m.verified {
		if !expiry.After(now) {
			delete(m.verified, key)
		}
	}
}

func isTarget(set captchaImageSet, url string) bool {
	for _, t := range set.targetURLs {
		if t == url {
			return true
		}
	}
	return false
}

func randomID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
