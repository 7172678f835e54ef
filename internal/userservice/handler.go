package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mikotobay/inkwell/internal/common"
)

var (
	ErrAuthenticationFailure = fmt.Errorf("unauthorized access")
)

func NewUserService(db *sql.DB, mb common.MessageProducer, e common.EventEmitter) *UserService {
	return &UserService{
		m:  newUserModel(db),
		mb: mb,
		e:  e,
	}
}

// CreateUser creates a new user account together with its profile and an
// activation token, then publishes a user.created event for the mail consumer.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string) (*string, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Username: username,
		Email:    email,
		Password: Password{Plain: password},
	}

	err := u.Password.set(u.Password.Plain)
	if err != nil {
		return nil, err
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	err = s.m.insertUser(tx, ctx, &u)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	token, err := s.m.createToken(tx, ctx, u.ID, ActivationTokenTime, TokenScopeActivate)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	data := struct {
		Email string
		Token string
	}{
		Email: u.Email,
		Token: token.Plain,
	}

	emailData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	err = s.mb.Publish(ctx, emailData, common.UserCreatedKey, common.UserExchange)
	if err != nil {
		return nil, err
	}

	return &token.Plain, nil
}

// ActivateUser activates a user account using the token, deletes the token and
// grants the post:write permission.
func (s *UserService) ActivateUser(ctx context.Context, token string) error {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return v.ValidationError()
	}

	hash := hashToken(token)

	user, err := s.m.getUserByToken(ctx, TokenScopeActivate, hash)
	if err != nil {
		return err
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = s.m.activateUserAccount(tx, ctx, user.ID, user.Version)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = s.m.deleteToken(tx, ctx, user.ID, TokenScopeActivate)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = s.m.addUserPermission(tx, ctx, user.ID, PermissionWritePost)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// LoginUser logs in a user and returns the access token and refresh token.
func (s *UserService) LoginUser(ctx context.Context, username, password string) (*AuthToken, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getUserByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrAuthenticationFailure
	}

	dbToken, err := s.m.getAuthToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	if dbToken != nil {
		if dbToken.AccessTokenExpiry.After(time.Now()) && dbToken.RefreshTokenExpiry.After(time.Now()) {
			_ = tx.Rollback()
			return dbToken, nil
		}

		err = s.m.deleteAuthToken(tx, ctx, user.ID)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}

	authToken, err := s.m.createAuthToken(tx, ctx, user.ID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return authToken, nil
}

func (s *UserService) GetUserByAccessToken(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	hash := hashToken(token)

	return s.m.getToken(ctx, hash)
}

func (s *UserService) LogoutUser(ctx context.Context, userID int) error {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = s.m.deleteAuthToken(tx, ctx, userID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getUserByUsername(ctx, username)
}

func (s *UserService) GetProfile(ctx context.Context, username string) (*Profile, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getProfile(ctx, username)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int, bio, picture string) error {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	validateBio(v, bio)
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.updateProfile(ctx, userID, bio, picture)
}

// Follow creates the follow edge with get-or-create semantics. A follow
// notification is emitted in the same transaction, and only when the edge did
// not already exist, so re-following is idempotent. follower == followed is
// rejected here rather than at the storage layer.
func (s *UserService) Follow(ctx context.Context, followerID, followedID int) (*Follow, error) {
	v := common.NewValidator()
	validateInt(v, followerID, "follower_id")
	validateInt(v, followedID, "followed_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if followerID == followedID {
		return nil, ErrSelfFollow
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	follow, created, err := s.m.insertFollow(tx, ctx, followerID, followedID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if created {
		err = s.e.Emit(ctx, tx, common.FollowCreated{FollowerID: followerID, FollowedID: followedID})
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return follow, nil
}

// Unfollow removes the follow edge. Removing an absent edge is a no-op.
func (s *UserService) Unfollow(ctx context.Context, followerID, followedID int) error {
	v := common.NewValidator()
	validateInt(v, followerID, "follower_id")
	validateInt(v, followedID, "followed_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.deleteFollow(ctx, followerID, followedID)
}

func (s *UserService) IsFollowing(ctx context.Context, followerID, followedID int) (bool, error) {
	return s.m.isFollowing(ctx, followerID, followedID)
}

func (s *UserService) Followers(ctx context.Context, userID int) ([]User, error) {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getFollowers(ctx, userID)
}

func (s *UserService) Following(ctx context.Context, userID int) ([]User, error) {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getFollowing(ctx, userID)
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}

func (u *User) IsActivated() bool {
	return u.Activated
}

func (u *User) HasPermission(permission Permission) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}

	return false
}
