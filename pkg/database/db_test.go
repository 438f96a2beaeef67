package data_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/spf13/afero"
	data "github.com/tauraamui/prismdaemon/pkg/database"
	"github.com/tauraamui/prismdaemon/pkg/database/dbconn"
	"github.com/tauraamui/prismdaemon/pkg/database/models"
)

type testPasswordPromptReader struct {
	testPassword string
	testError    error
}

func (t testPasswordPromptReader) ReadPassword(promptText string) ([]byte, error) {
	return []byte(t.testPassword), t.testError
}

func overloadsForSetup(t *testing.T, db dbconn.MockGormWrapper) func() {
	resetFS := data.OverloadFS(afero.NewMemMapFs())
	resetUC := data.OverloadUC(func() (string, error) { return "/testcacheroot", nil })
	resetOpenDBConn := data.OverloadOpenDBConnection(func(path string) (dbconn.GormWrapper, error) {
		return db, nil
	})
	resetPromptReader := data.OverloadPlainPromptReader(
		data.NewStdinPlainReader(strings.NewReader("testadmin\n")),
	)
	resetPasswordPromptReader := data.OverloadPasswordPromptReader(
		testPasswordPromptReader{testPassword: "testpassword"},
	)

	return func() {
		resetPasswordPromptReader()
		resetPromptReader()
		resetOpenDBConn()
		resetUC()
		resetFS()
	}
}

func TestSetupAgainstBlankFileSystemCreatesDBAndRootUser(t *testing.T) {
	is := is.New(t)

	db := dbconn.Mock()
	reset := overloadsForSetup(t, db)
	defer reset()

	is.NoErr(data.Setup())

	created := db.Created()
	is.Equal(len(created), 1)
	user, ok := created[0].(*models.User)
	is.True(ok)
	is.Equal(user.Name, "testadmin")
}

func TestSetupRefusesToOverwriteExistingDBFile(t *testing.T) {
	is := is.New(t)

	db := dbconn.Mock()
	reset := overloadsForSetup(t, db)
	defer reset()

	is.NoErr(data.Setup())
	err := data.Setup()
	is.True(err != nil)
	is.True(errors.Is(err, data.ErrDBAlreadyExists))
}

func TestSetupReturnsErrorFromPathResolutionFailure(t *testing.T) {
	is := is.New(t)

	reset := data.OverloadUC(func() (string, error) {
		return "", errors.New("test cache dir error")
	})
	defer reset()

	err := data.Setup()
	is.True(err != nil)
	is.Equal(err.Error(), "unable to resolve pd.db database file location: test cache dir error")
}

func TestDestroyRemovesDBFile(t *testing.T) {
	is := is.New(t)

	db := dbconn.Mock()
	reset := overloadsForSetup(t, db)
	defer reset()

	is.NoErr(data.Setup())
	is.NoErr(data.Destroy())

	// gone, so setting up again must succeed; the injected prompt reader
	// was drained by the first Setup, so supply a fresh one
	resetPromptReader := data.OverloadPlainPromptReader(
		data.NewStdinPlainReader(strings.NewReader("testadmin\n")),
	)
	defer resetPromptReader()
	is.NoErr(data.Setup())
}
