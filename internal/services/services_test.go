package services

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bandhub/internal/logger"
	"bandhub/internal/mailer"
	"bandhub/internal/storage"
	"bandhub/internal/testutil"
)

func init() {
	logger.Init("test")
	PasswordHashCost = bcrypt.MinCost
}

type testEnv struct {
	db       *gorm.DB
	mail     *mailer.Recorder
	composer *mailer.Composer
	disk     *storage.Disk
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	disk, err := storage.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create disk storage: %v", err)
	}
	return &testEnv{
		db:       db,
		mail:     &mailer.Recorder{},
		composer: mailer.NewComposer("Test Band", "http://band.test"),
		disk:     disk,
	}
}

func (e *testEnv) users() UserServicer {
	return NewUserService(e.db, e.disk, e.mail, e.composer)
}
