package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microblog-app/backend/internal/dto"
	"github.com/microblog-app/backend/internal/models"
)

func TestCreateUserLowercasesEmail(t *testing.T) {
	svc, _ := newTestUserService(t)

	user := createTestUser(t, svc, "Example User", "Foo@ExAMPle.CoM")
	assert.Equal(t, "foo@example.com", user.Email)

	found, err := svc.FindByEmail("FOO@example.COM")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestCreateUserAggregatesAllViolations(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.Create(&dto.CreateUserRequest{
		Name:                 "   ",
		Email:                "not-an-email",
		Password:             "short",
		PasswordConfirmation: "different",
	})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 4, verr.Count())
	assert.Equal(t, []string{
		"Name can't be blank",
		"Email is invalid",
		"Password is too short (minimum is 8 characters)",
		"Password confirmation doesn't match Password",
	}, verr.Messages())
	assert.Equal(t, "the form contains 4 errors", verr.Error())
}

func TestCreateUserRejectsInvalidEmails(t *testing.T) {
	svc, _ := newTestUserService(t)

	invalid := []string{
		"user@example,com",
		"user_at_foo.org",
		"user.name@example.",
		"foo@bar_baz.com",
		"foo@bar+baz.com",
	}
	for _, email := range invalid {
		_, err := svc.Create(&dto.CreateUserRequest{
			Name:                 "Example User",
			Email:                email,
			Password:             "foobarbaz",
			PasswordConfirmation: "foobarbaz",
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "%q should be invalid", email)
		assert.Contains(t, verr.Messages(), "Email is invalid", "%q should fail on format", email)
	}
}

func TestCreateUserDuplicateEmailCaseInsensitive(t *testing.T) {
	svc, _ := newTestUserService(t)
	createTestUser(t, svc, "Example User", "user@example.com")

	_, err := svc.Create(&dto.CreateUserRequest{
		Name:                 "Other User",
		Email:                "USER@Example.Com",
		Password:             "foobarbaz",
		PasswordConfirmation: "foobarbaz",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages(), "Email has already been taken")
}

func TestCreateUserNoPartialWrite(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.Create(&dto.CreateUserRequest{
		Name:                 "Example User",
		Email:                "bad-email",
		Password:             "foobarbaz",
		PasswordConfirmation: "foobarbaz",
	})
	require.Error(t, err)

	_, err = svc.FindByEmail("bad-email")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateUserSendsActivationEmail(t *testing.T) {
	svc, m := newTestUserService(t)
	user := createTestUser(t, svc, "Example User", "user@example.com")

	select {
	case token := <-m.activations:
		assert.True(t, svc.Authenticated(user, models.DigestActivation, token))
	case <-time.After(2 * time.Second):
		t.Fatal("activation email was not sent")
	}
}

func TestAuthenticatedWithMissingDigest(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := createTestUser(t, svc, "Example User", "user@example.com")

	// no remember or reset digest exists yet
	assert.False(t, svc.Authenticated(user, models.DigestRemember, ""))
	assert.False(t, svc.Authenticated(user, models.DigestRemember, "anytoken"))
	assert.False(t, svc.Authenticated(user, models.DigestReset, "anytoken"))
}

func TestRememberAndForget(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := createTestUser(t, svc, "Example User", "user@example.com")

	token, err := svc.Remember(user)
	require.NoError(t, err)
	assert.True(t, svc.Authenticated(user, models.DigestRemember, token))
	assert.False(t, svc.Authenticated(user, models.DigestRemember, "some-other-token"))

	// a fresh remember token replaces the old one
	token2, err := svc.Remember(user)
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
	assert.False(t, svc.Authenticated(user, models.DigestRemember, token))
	assert.True(t, svc.Authenticated(user, models.DigestRemember, token2))

	require.NoError(t, svc.Forget(user))
	assert.False(t, svc.Authenticated(user, models.DigestRemember, token2))

	// forgetting twice is harmless
	require.NoError(t, svc.Forget(user))
}

func TestActivateIsIdempotent(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := createTestUser(t, svc, "Example User", "user@example.com")
	assert.False(t, user.Activated)

	require.NoError(t, svc.Activate(user))
	assert.True(t, user.Activated)
	require.NotNil(t, user.ActivatedAt)

	require.NoError(t, svc.Activate(user))

	reloaded, err := svc.Find(user.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Activated)
	assert.NotNil(t, reloaded.ActivatedAt)
}

func TestPasswordResetExpiry(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := createTestUser(t, svc, "Example User", "user@example.com")

	// no reset was ever issued
	assert.True(t, svc.PasswordResetExpired(user))

	_, err := svc.CreateResetDigest(user)
	require.NoError(t, err)

	issued := *user.ResetSentAt

	svc.now = func() time.Time { return issued.Add(1 * time.Hour) }
	assert.False(t, svc.PasswordResetExpired(user))

	// boundary: exactly two hours is still valid (expiry is strict)
	svc.now = func() time.Time { return issued.Add(PasswordResetValidity) }
	assert.False(t, svc.PasswordResetExpired(user))

	svc.now = func() time.Time { return issued.Add(3 * time.Hour) }
	assert.True(t, svc.PasswordResetExpired(user))
}

func TestCreateResetDigestOverwritesPrevious(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := createTestUser(t, svc, "Example User", "user@example.com")

	token1, err := svc.CreateResetDigest(user)
	require.NoError(t, err)
	token2, err := svc.CreateResetDigest(user)
	require.NoError(t, err)

	assert.False(t, svc.Authenticated(user, models.DigestReset, token1))
	assert.True(t, svc.Authenticated(user, models.DigestReset, token2))
}

func TestUpdatePasswordClearsResetDigest(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := createTestUser(t, svc, "Example User", "user@example.com")

	token, err := svc.CreateResetDigest(user)
	require.NoError(t, err)
	require.True(t, svc.Authenticated(user, models.DigestReset, token))

	require.NoError(t, svc.UpdatePassword(user, "newpassword", "newpassword"))

	reloaded, err := svc.Find(user.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.ResetDigest)
}

func TestUpdatePasswordValidates(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := createTestUser(t, svc, "Example User", "user@example.com")

	var verr *ValidationError

	err := svc.UpdatePassword(user, "short", "short")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages(), "Password is too short (minimum is 8 characters)")

	err = svc.UpdatePassword(user, "        ", "        ")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages(), "Password can't be blank")

	err = svc.UpdatePassword(user, "newpassword", "different")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages(), "Password confirmation doesn't match Password")
}

func TestUpdateEmptyPasswordLeavesDigest(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := createTestUser(t, svc, "Example User", "user@example.com")
	digest := user.PasswordDigest

	updated, err := svc.Update(user.ID, &dto.UpdateUserRequest{
		Name:  "Renamed User",
		Email: "user@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed User", updated.Name)

	reloaded, err := svc.Find(user.ID)
	require.NoError(t, err)
	assert.Equal(t, digest, reloaded.PasswordDigest)
}

func TestUpdateCannotGrantAdmin(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := createTestUser(t, svc, "Example User", "user@example.com")

	_, err := svc.Update(user.ID, &dto.UpdateUserRequest{
		Name:  "Sneaky User",
		Email: "user@example.com",
	})
	require.NoError(t, err)

	reloaded, err := svc.Find(user.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Admin)
}

func TestUpdateKeepsEmailUniquenessExemptionForSelf(t *testing.T) {
	svc, _ := newTestUserService(t)
	user := createTestUser(t, svc, "Example User", "user@example.com")
	createTestUser(t, svc, "Other User", "other@example.com")

	// keeping your own email is fine
	_, err := svc.Update(user.ID, &dto.UpdateUserRequest{
		Name:  "Example User",
		Email: "user@example.com",
	})
	require.NoError(t, err)

	// taking someone else's is not
	_, err = svc.Update(user.ID, &dto.UpdateUserRequest{
		Name:  "Example User",
		Email: "other@example.com",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages(), "Email has already been taken")
}

func TestDestroyCascades(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db, newRecordingMailer(), testConfig())
	rels := NewRelationshipService(db)
	posts := NewMicropostService(db)

	a := createTestUser(t, users, "User A", "a@example.com")
	b := createTestUser(t, users, "User B", "b@example.com")
	c := createTestUser(t, users, "User C", "c@example.com")

	require.NoError(t, rels.Follow(a.ID, b.ID)) // a follows b
	require.NoError(t, rels.Follow(c.ID, a.ID)) // c follows a
	_, err := posts.Create(a.ID, "a post by a")
	require.NoError(t, err)

	require.NoError(t, users.Destroy(a.ID))

	_, err = users.Find(a.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	followers, err := rels.FollowersCount(b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, followers)

	following, err := rels.FollowingCount(c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, following)

	remaining, err := posts.ListByUser(a.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
