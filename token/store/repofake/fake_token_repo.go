package repofake

import (
	"sync"

	"github.com/jalsoochak/go-admin-console/token/store"
)

var _ store.Repo = (*FakeTokenRepo)(nil)

// FakeTokenRepo is an in-memory token store for tests.
type FakeTokenRepo struct {
	lock sync.Mutex
	pair *store.TokenPair

	SaveErr  error // returned from Save when set
	LoadErr  error // returned from Load when set
	ClearErr error // returned from Clear when set
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{}
}

func (r *FakeTokenRepo) Save(accessToken, refreshToken string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.pair = &store.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}
	return nil
}

func (r *FakeTokenRepo) Load() (*store.TokenPair, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.LoadErr != nil {
		return nil, r.LoadErr
	}
	if r.pair == nil {
		return nil, nil
	}
	pair := *r.pair
	return &pair, nil
}

func (r *FakeTokenRepo) Clear() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.ClearErr != nil {
		return r.ClearErr
	}
	r.pair = nil
	return nil
}

// Pair returns the currently stored pair, or nil.
func (r *FakeTokenRepo) Pair() *store.TokenPair {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.pair == nil {
		return nil
	}
	pair := *r.pair
	return &pair
}
