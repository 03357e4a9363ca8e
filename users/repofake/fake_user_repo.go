package fakeuserrepo

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/learnpath-client/internal/errors"
	"github.com/jrsteele09/learnpath-client/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo keeps accounts in memory, keyed by id with an email index.
// Emails are matched case-insensitively.
type FakeUserRepo struct {
	accounts map[string]*users.Account
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		accounts: make(map[string]*users.Account),
		emailIds: make(map[string]string),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func clone(a *users.Account) *users.Account {
	out := *a
	out.PasswordHash = append([]byte(nil), a.PasswordHash...)
	return &out
}

func (ur *FakeUserRepo) Upsert(account *users.Account) error {
	if account == nil {
		return errors.New("[FakeUserRepo Upsert] account is required")
	}
	key := emailKey(account.Email)
	if key == "" {
		return errors.New("[FakeUserRepo Upsert] email is required")
	}

	ur.lock.Lock()
	defer ur.lock.Unlock()

	if existingID, ok := ur.emailIds[key]; ok && existingID != account.ID {
		if account.ID != "" {
			return errors.New("[FakeUserRepo Upsert] email already registered")
		}
		account.ID = existingID
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	ur.accounts[account.ID] = clone(account)
	ur.emailIds[key] = account.ID
	return nil
}

func (ur *FakeUserRepo) Delete(email string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	key := emailKey(email)
	userID, ok := ur.emailIds[key]
	if !ok {
		return apperrors.ErrNotFound
	}
	delete(ur.emailIds, key)
	delete(ur.accounts, userID)
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[emailKey(email)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return clone(ur.accounts[id]), nil
}

func (ur *FakeUserRepo) GetByID(id string) (*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	account, ok := ur.accounts[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return clone(account), nil
}

func (ur *FakeUserRepo) List(offset, limit int) ([]*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	list := make([]*users.Account, 0, len(ur.accounts))
	for _, v := range ur.accounts {
		list = append(list, clone(v))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})

	if offset < 0 || offset >= len(list) {
		return []*users.Account{}, nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end], nil
}
