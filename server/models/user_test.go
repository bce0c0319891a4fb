package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUser(t *testing.T) {
	stores := newTestStores(t)

	user := &User{
		FirstName:   "tony",
		LastName:    "stark",
		Email:       "stark@avengers.com",
		Gender:      "male",
		PhoneNumber: "4165550100",
		DOB:         "1970-05-29",
	}
	err := stores.users.Create(user, "very-secure")
	require.Nil(t, err)

	assert.NotEmpty(t, user.UserID, "Should generate a user id")
	assert.NotEqual(t, "very-secure", user.PasswordHash, "Should not store the plaintext password")
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)

	found, err := stores.users.FindByEmail("stark@avengers.com")
	require.Nil(t, err)
	assert.Equal(t, user.UserID, found.UserID)
	assert.Equal(t, "1970-05-29", found.DOB)
	assert.Empty(t, found.PasswordHash, "FindByEmail should not load the password hash")

	passwordHash, err := stores.users.PasswordHash("stark@avengers.com")
	require.Nil(t, err)
	assert.Nil(t, bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte("very-secure")))
}

func TestCreateUserConflict(t *testing.T) {
	stores := newTestStores(t)
	first := stores.createUser(t, "stark@avengers.com")

	duplicate := &User{FirstName: "spider", LastName: "man", Email: "stark@avengers.com"}
	err := stores.users.Create(duplicate, "secure???")
	assert.ErrorIs(t, err, ErrConflict)

	found, err := stores.users.FindByEmail("stark@avengers.com")
	require.Nil(t, err)
	assert.Equal(t, first.UserID, found.UserID, "First identity should be unchanged")
	assert.Equal(t, "tony", found.FirstName)

	passwordHash, err := stores.users.PasswordHash("stark@avengers.com")
	require.Nil(t, err)
	assert.Nil(t, bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte("very-secure")))
}

func TestCreateUserEmailIsCaseSensitive(t *testing.T) {
	stores := newTestStores(t)
	stores.createUser(t, "stark@avengers.com")

	err := stores.users.Create(&User{FirstName: "tony", LastName: "stark", Email: "Stark@avengers.com"}, "very-secure")
	assert.Nil(t, err)
}

func TestFindByEmailNotFound(t *testing.T) {
	stores := newTestStores(t)

	_, err := stores.users.FindByEmail("nobody@avengers.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = stores.users.PasswordHash("nobody@avengers.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateFields(t *testing.T) {
	stores := newTestStores(t)
	user := stores.createUser(t, "stark@avengers.com")

	updated, err := stores.users.UpdateFields("stark@avengers.com", map[string]interface{}{"fname": "A"})
	require.Nil(t, err)

	assert.Equal(t, "A", updated.FirstName)
	assert.Equal(t, "stark", updated.LastName, "Absent fields should be left untouched")
	assert.Equal(t, "4165550100", updated.PhoneNumber, "Absent fields should be left untouched")
	assert.True(t, updated.UpdatedAt.After(user.UpdatedAt), "updatedAt should strictly increase")
	assert.True(t, updated.CreatedAt.Equal(user.CreatedAt))

	again, err := stores.users.UpdateFields("stark@avengers.com", map[string]interface{}{
		"lname":       "Stark",
		"phoneNumber": "6475550199",
		"dob":         "1970-05-29",
		"gender":      "male",
	})
	require.Nil(t, err)
	assert.Equal(t, "A", again.FirstName)
	assert.Equal(t, "Stark", again.LastName)
	assert.Equal(t, "6475550199", again.PhoneNumber)
	assert.Equal(t, "1970-05-29", again.DOB)
	assert.Equal(t, "male", again.Gender)
	assert.True(t, again.UpdatedAt.After(updated.UpdatedAt))
}

func TestUpdateFieldsIgnoresUnknownFields(t *testing.T) {
	stores := newTestStores(t)
	user := stores.createUser(t, "stark@avengers.com")

	updated, err := stores.users.UpdateFields("stark@avengers.com", map[string]interface{}{
		"email":        "web@avengers.com",
		"userID":       "someone-else",
		"passwordHash": "plain",
	})
	require.Nil(t, err)

	assert.Equal(t, user.UserID, updated.UserID)
	assert.Equal(t, "stark@avengers.com", updated.Email)
	assert.True(t, updated.UpdatedAt.Equal(user.UpdatedAt), "Nothing changed, so updatedAt should not move")

	passwordHash, err := stores.users.PasswordHash("stark@avengers.com")
	require.Nil(t, err)
	assert.Equal(t, user.PasswordHash, passwordHash)
}

func TestUpdateFieldsRejectsInvalidInput(t *testing.T) {
	testCases := []struct {
		desc string
		data map[string]interface{}
	}{
		{"Should reject a 5 digit phone number", map[string]interface{}{"fname": "A", "phoneNumber": "12345"}},
		{"Should reject an 11 digit phone number", map[string]interface{}{"phoneNumber": "14165550100"}},
		{"Should reject a phone number with letters", map[string]interface{}{"phoneNumber": "416555010a"}},
		{"Should reject a formatted phone number", map[string]interface{}{"phoneNumber": "+141655501"}},
		{"Should reject a non-string value", map[string]interface{}{"fname": 42}},
		{"Should reject a null value", map[string]interface{}{"lname": nil}},
	}

	for _, tcase := range testCases {
		t.Run(tcase.desc, func(t *testing.T) {
			stores := newTestStores(t)
			user := stores.createUser(t, "stark@avengers.com")

			_, err := stores.users.UpdateFields("stark@avengers.com", tcase.data)
			assert.ErrorIs(t, err, ErrInvalidInput)

			found, err := stores.users.FindByEmail("stark@avengers.com")
			require.Nil(t, err)
			assert.Equal(t, "tony", found.FirstName, "No mutation should occur")
			assert.Equal(t, "stark", found.LastName, "No mutation should occur")
			assert.Equal(t, "4165550100", found.PhoneNumber, "No mutation should occur")
			assert.True(t, found.UpdatedAt.Equal(user.UpdatedAt), "No mutation should occur")
		})
	}
}

func TestUpdateFieldsPhoneNumberMessage(t *testing.T) {
	stores := newTestStores(t)
	stores.createUser(t, "stark@avengers.com")

	for _, phoneNumber := range []interface{}{"12345", float64(4165550199), nil} {
		_, err := stores.users.UpdateFields("stark@avengers.com", map[string]interface{}{"phoneNumber": phoneNumber})
		assert.Equal(t, ErrInvalidPhoneNumber, err, "phoneNumber %v", phoneNumber)
	}
}

func TestUpdateFieldsUnknownUser(t *testing.T) {
	stores := newTestStores(t)

	_, err := stores.users.UpdateFields("nobody@avengers.com", map[string]interface{}{"fname": "A"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsValidPhoneNumber(t *testing.T) {
	assert.True(t, IsValidPhoneNumber("4165550100"))
	assert.True(t, IsValidPhoneNumber("0000000000"))
	assert.False(t, IsValidPhoneNumber(""))
	assert.False(t, IsValidPhoneNumber("12345"))
	assert.False(t, IsValidPhoneNumber("416-555-01"))
	assert.False(t, IsValidPhoneNumber("٤١٦٥٥٥٠١٠٠"), "Non-ASCII digits should be rejected")
}
