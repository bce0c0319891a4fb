package models

import (
	"testing"
	"time"

	"github.com/Daskott/vitals/server/auth"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// stepClock advances by one second on every reading
type stepClock struct {
	current time.Time
}

func (clock *stepClock) now() time.Time {
	clock.current = clock.current.Add(time.Second)
	return clock.current
}

type testStores struct {
	db          *gorm.DB
	users       *UserStore
	medications *MedicationStore
	contacts    *ContactStore
}

func newTestStores(t *testing.T) *testStores {
	t.Helper()

	db, err := OpenInMemoryDB()
	require.Nil(t, err)

	clock := &stepClock{current: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
	stores := &testStores{
		db:          db,
		users:       NewUserStore(db, auth.NewHasher(bcrypt.MinCost)),
		medications: NewMedicationStore(db),
		contacts:    NewContactStore(db),
	}
	stores.users.now = clock.now
	stores.medications.now = clock.now
	stores.contacts.now = clock.now

	return stores
}

func (stores *testStores) createUser(t *testing.T, email string) *User {
	t.Helper()

	user := &User{FirstName: "tony", LastName: "stark", Email: email, PhoneNumber: "4165550100"}
	require.Nil(t, stores.users.Create(user, "very-secure"))

	return user
}
