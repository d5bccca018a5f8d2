package service

import (
	"context"
	"sync"

	"microwave/internal/models"
	"microwave/internal/repository"
)

// memStateRepo keeps every saved snapshot.
type memStateRepo struct {
	mu      sync.Mutex
	saved   []models.OvenState
	loadErr error
	saveErr error
}

func (r *memStateRepo) Save(_ context.Context, s models.OvenState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, s)
	return r.saveErr
}

func (r *memStateRepo) Load(context.Context) (models.OvenState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return models.OvenState{}, r.loadErr
	}
	if len(r.saved) == 0 {
		return models.OvenState{}, nil
	}
	return r.saved[len(r.saved)-1], nil
}

func (r *memStateRepo) last() models.OvenState {
	st, _ := r.Load(context.Background())
	return st
}

// fakeEventRepo records appended events and captures List arguments.
type fakeEventRepo struct {
	mu        sync.Mutex
	appended  []models.OvenEvent
	appendErr error

	got    repository.EventQuery
	events []models.OvenEvent
	err    error
	calls  int
}

func (f *fakeEventRepo) Append(_ context.Context, e models.OvenEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, e)
	return nil
}

func (f *fakeEventRepo) List(_ context.Context, q repository.EventQuery) ([]models.OvenEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.got = q
	return f.events, f.err
}

func (f *fakeEventRepo) all() []models.OvenEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.OvenEvent(nil), f.appended...)
}

func (f *fakeEventRepo) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.appended))
	for _, e := range f.appended {
		out = append(out, e.Type)
	}
	return out
}

// recordingNotifier keeps notification messages.
type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, message)
	return nil
}

func (n *recordingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

// memOperatorRepo is an in-memory operators table.
type memOperatorRepo struct {
	mu     sync.Mutex
	byName map[string]models.Operator
	nextID int
	err    error
}

func newMemOperatorRepo() *memOperatorRepo {
	return &memOperatorRepo{byName: map[string]models.Operator{}}
}

func (r *memOperatorRepo) Create(_ context.Context, username, hash string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	if _, ok := r.byName[username]; ok {
		return 0, repository.ErrOperatorExists
	}
	r.nextID++
	r.byName[username] = models.Operator{ID: r.nextID, Username: username, PasswordHash: hash}
	return r.nextID, nil
}

func (r *memOperatorRepo) GetByUsername(_ context.Context, username string) (*models.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	op, ok := r.byName[username]
	if !ok {
		return nil, nil
	}
	return &op, nil
}
