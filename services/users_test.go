package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"chorus/social-service/models"
	"chorus/social-service/utils"
)

func newTestUserService(store *mockUserStore) *UserService {
	svc := NewUserService(store, NewTokenCodec("test-secret", time.Hour), utils.NewNopLogger())
	svc.cost = bcrypt.MinCost
	return svc
}

func assertKind(t *testing.T, err error, kind utils.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	assert.Equal(t, kind, appErr.Kind, appErr.Message)
}

func TestUserService_Signup(t *testing.T) {
	var created *models.User
	store := &mockUserStore{
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = uuid.New()
			created = u
			return nil
		},
	}
	svc := newTestUserService(store)

	user, token, err := svc.Signup(context.Background(), models.SignupRequest{
		Name: "Ada", Email: " Ada@Example.com ", Username: "ada", Password: "pw",
	})
	require.NoError(t, err)

	assert.Empty(t, user.Password)
	assert.Equal(t, "ada@example.com", user.Email)
	require.NotNil(t, created)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("pw")))

	userID, err := svc.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), userID)
}

func TestUserService_SignupRejectsDuplicate(t *testing.T) {
	store := &mockUserStore{
		findByUsernameOrEmailFn: func(context.Context, string, string) (*models.User, error) {
			return &models.User{ID: uuid.New()}, nil
		},
	}
	_, _, err := newTestUserService(store).Signup(context.Background(), models.SignupRequest{
		Name: "Ada", Email: "a@x", Username: "ada", Password: "pw",
	})
	assertKind(t, err, utils.KindValidation)
}

func TestUserService_SignupMissingFields(t *testing.T) {
	_, _, err := newTestUserService(&mockUserStore{}).Signup(context.Background(), models.SignupRequest{Username: "ada"})
	assertKind(t, err, utils.KindValidation)
}

func TestUserService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{ID: uuid.New(), Username: "ada", Password: string(hash)}
	store := &mockUserStore{
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			if username == "ada" {
				cp := *stored
				return &cp, nil
			}
			return nil, ErrNotFound
		},
	}
	svc := newTestUserService(store)

	user, token, err := svc.Login(context.Background(), models.LoginRequest{Username: "ada", Password: "pw"})
	require.NoError(t, err)
	assert.Empty(t, user.Password)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{Username: "ada", Password: "wrong"})
	assertKind(t, err, utils.KindValidation)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "pw"})
	assertKind(t, err, utils.KindValidation)
}

func TestUserService_LookupStripsPassword(t *testing.T) {
	u := &models.User{ID: uuid.New(), Username: "ada", Password: "hash"}
	svc := newTestUserService(&mockUserStore{getByIDFn: usersByID(u)})

	got, err := svc.Lookup(context.Background(), u.ID.String())
	require.NoError(t, err)
	assert.Empty(t, got.Password)

	_, err = svc.Lookup(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Lookup(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_GetProfileByIDOrUsername(t *testing.T) {
	u := &models.User{ID: uuid.New(), Username: "ada", Password: "hash"}
	store := &mockUserStore{
		getByIDFn: usersByID(u),
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			if username == "ada" {
				cp := *u
				return &cp, nil
			}
			return nil, ErrNotFound
		},
	}
	svc := newTestUserService(store)

	byID, err := svc.GetProfile(context.Background(), u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "ada", byID.Username)

	byName, err := svc.GetProfile(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
	assert.Empty(t, byName.Password)

	_, err = svc.GetProfile(context.Background(), "nobody")
	assertKind(t, err, utils.KindNotFound)
}

func TestUserService_ToggleFollow(t *testing.T) {
	me := &models.User{ID: uuid.New()}
	target := &models.User{ID: uuid.New()}

	var calls []bool
	store := &mockUserStore{
		getByIDFn: usersByID(me, target),
		setFollowFn: func(_ context.Context, followerID, targetID uuid.UUID, follow bool) error {
			assert.Equal(t, me.ID, followerID)
			assert.Equal(t, target.ID, targetID)
			calls = append(calls, follow)
			return nil
		},
	}
	svc := newTestUserService(store)

	followed, err := svc.ToggleFollow(context.Background(), me, target.ID.String())
	require.NoError(t, err)
	assert.True(t, followed)

	me.Following = pq.StringArray{target.ID.String()}
	followed, err = svc.ToggleFollow(context.Background(), me, target.ID.String())
	require.NoError(t, err)
	assert.False(t, followed)
	assert.Equal(t, []bool{true, false}, calls)
}

func TestUserService_ToggleFollowErrors(t *testing.T) {
	me := &models.User{ID: uuid.New()}
	svc := newTestUserService(&mockUserStore{getByIDFn: usersByID(me)})

	_, err := svc.ToggleFollow(context.Background(), me, me.ID.String())
	assertKind(t, err, utils.KindValidation)

	_, err = svc.ToggleFollow(context.Background(), me, uuid.NewString())
	assertKind(t, err, utils.KindNotFound)

	_, err = svc.ToggleFollow(context.Background(), me, "bad")
	assertKind(t, err, utils.KindValidation)
}

func TestUserService_Update(t *testing.T) {
	me := &models.User{ID: uuid.New(), Name: "Ada", Username: "ada", Email: "a@x", Bio: "old"}
	var saved *models.User
	store := &mockUserStore{
		getByIDFn: usersByID(me),
		saveFn: func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		},
	}
	svc := newTestUserService(store)

	got, err := svc.Update(context.Background(), me, me.ID.String(), models.UpdateUserRequest{Bio: "new", Password: "pw2"})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Bio)
	assert.Equal(t, "Ada", got.Name)
	assert.Empty(t, got.Password)
	require.NotNil(t, saved)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("pw2")))
}

func TestUserService_UpdateOtherUserForbidden(t *testing.T) {
	me := &models.User{ID: uuid.New()}
	_, err := newTestUserService(&mockUserStore{}).Update(context.Background(), me, uuid.NewString(), models.UpdateUserRequest{})
	assertKind(t, err, utils.KindAuthorization)
}

func TestUserService_UpdateUsernameTaken(t *testing.T) {
	me := &models.User{ID: uuid.New(), Username: "ada"}
	store := &mockUserStore{
		getByIDFn: usersByID(me),
		findByUsernameOrEmailFn: func(context.Context, string, string) (*models.User, error) {
			return &models.User{ID: uuid.New()}, nil
		},
	}
	_, err := newTestUserService(store).Update(context.Background(), me, me.ID.String(), models.UpdateUserRequest{Username: "bob"})
	assertKind(t, err, utils.KindValidation)
}
