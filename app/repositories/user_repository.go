package repositories

import (
	"context"
	"errors"
	"strings"

	"microsocial/app/models"

	"github.com/dgraph-io/badger/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BadgerUserRepository implements UserRepository using BadgerDB. Usernames
// and emails are unique through index keys holding the user id.
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

func usernameIndexKey(username string) []byte {
	return []byte(UsernameIndexPrefix + models.UsernameKey(username))
}

func emailIndexKey(email string) []byte {
	return []byte(EmailIndexPrefix + models.NormalizeEmail(email))
}

// Create stores a new user, failing with ErrDuplicateUsername or
// ErrDuplicateEmail when either is already registered
func (r *BadgerUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	return update(ctx, r.db, func(txn *badger.Txn) error {
		taken, err := exists(txn, usernameIndexKey(user.Username))
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateUsername
		}
		taken, err = exists(txn, emailIndexKey(user.Email))
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}

		if err := setEntity(txn, userKey(user.ID), user); err != nil {
			return err
		}
		if err := txn.Set(usernameIndexKey(user.Username), user.ID[:]); err != nil {
			return err
		}
		return txn.Set(emailIndexKey(user.Email), user.ID[:])
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return getEntity(txn, userKey(id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *BadgerUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getByIndex(ctx, emailIndexKey(email))
}

// GetByUsername retrieves a user by username, case-insensitively
func (r *BadgerUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getByIndex(ctx, usernameIndexKey(username))
}

func (r *BadgerUserRepository) getByIndex(ctx context.Context, key []byte) (*models.User, error) {
	var user models.User
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		id, err := getID(txn, key)
		if err != nil {
			return err
		}
		return getEntity(txn, userKey(id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update saves profile changes. A changed username moves the index entry and
// fails with ErrDuplicateUsername if another user holds the new name.
func (r *BadgerUserRepository) Update(ctx context.Context, user *models.User) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		var current models.User
		if err := getEntity(txn, userKey(user.ID), &current); err != nil {
			return err
		}

		if models.UsernameKey(current.Username) != models.UsernameKey(user.Username) {
			holder, err := getID(txn, usernameIndexKey(user.Username))
			switch {
			case err == nil && holder != user.ID:
				return ErrDuplicateUsername
			case err != nil && !errors.Is(err, ErrNotFound):
				return err
			}
			if err := txn.Delete(usernameIndexKey(current.Username)); err != nil {
				return err
			}
			if err := txn.Set(usernameIndexKey(user.Username), user.ID[:]); err != nil {
				return err
			}
		}

		// Email and credentials are not editable here.
		user.Email = current.Email
		user.PasswordHash = current.PasswordHash
		user.CreatedAt = current.CreatedAt
		return setEntity(txn, userKey(user.ID), user)
	})
}

// Search returns users whose username or email contains query, ignoring
// case, in registration order
func (r *BadgerUserRepository) Search(ctx context.Context, query string, skip, limit int) ([]*models.User, error) {
	users := []*models.User{}
	if limit <= 0 {
		return users, nil
	}
	matched := 0
	err := r.eachMatch(ctx, query, func(user *models.User) bool {
		if matched >= skip {
			users = append(users, user)
		}
		matched++
		return len(users) < limit
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CountSearch returns the number of users Search would match
func (r *BadgerUserRepository) CountSearch(ctx context.Context, query string) (int, error) {
	n := 0
	err := r.eachMatch(ctx, query, func(*models.User) bool {
		n++
		return true
	})
	return n, err
}

// eachMatch calls fn for each matching user until fn returns false.
func (r *BadgerUserRepository) eachMatch(ctx context.Context, query string, fn func(*models.User) bool) error {
	needle := strings.ToLower(strings.TrimSpace(query))
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return scanPrefix(ctx, txn, []byte(UserKeyPrefix), false, 0, -1, func(item *badger.Item) error {
			var user models.User
			if err := item.Value(func(val []byte) error {
				return unmarshalEntity(val, &user)
			}); err != nil {
				return err
			}
			if !strings.Contains(strings.ToLower(user.Username), needle) &&
				!strings.Contains(user.Email, needle) {
				return nil
			}
			if !fn(&user) {
				return errStopScan
			}
			return nil
		})
	})
	if errors.Is(err, errStopScan) {
		return nil
	}
	return err
}
