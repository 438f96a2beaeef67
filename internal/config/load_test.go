package config

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tauraamui/prismdaemon/pkg/configdef"
)

type LoadConfigTestSuite struct {
	suite.Suite
	configResolver       configdef.Resolver
	fs                   afero.Fs
	resetUserConfigDir   func()
	path                 string
	configFile           afero.File
}

func (suite *LoadConfigTestSuite) SetupSuite() {
	suite.fs = afero.NewMemMapFs()
	suite.configResolver = DefaultResolver()

	// use in memory FS in implementation for tests
	fs = suite.fs

	userConfigDirRef := userConfigDir
	userConfigDir = func() (string, error) { return "/testcfgroot", nil }
	suite.resetUserConfigDir = func() { userConfigDir = userConfigDirRef }
}

func (suite *LoadConfigTestSuite) TearDownSuite() {
	fs = afero.NewOsFs()
	suite.resetUserConfigDir()
}

func (suite *LoadConfigTestSuite) SetupTest() {
	path, err := resolveConfigPath()
	require.NoError(suite.T(), err)
	suite.path = path

	configFile, err := suite.fs.Create(path)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), configFile)

	suite.configFile = configFile

	suite.overwriteTestConfig(
		`{
			"debug": true,
			"secret": "DJIF3fje943fi4jefgo0",
			"max_clip_age_in_days": 19,
			"streams": []
		}`,
	)
}

func (suite *LoadConfigTestSuite) overwriteTestConfig(config string) {
	require.NoError(suite.T(), suite.configFile.Truncate(0))
	_, err := suite.configFile.Seek(0, 0)
	require.NoError(suite.T(), err)
	_, err = suite.configFile.WriteString(config)
	assert.NoError(suite.T(), err)
}

func (suite *LoadConfigTestSuite) TearDownTest() {
	require.NoError(suite.T(), suite.configFile.Close())
	suite.fs.Remove(suite.path)
}

func TestLoadConfigTestSuite(t *testing.T) {
	suite.Run(t, &LoadConfigTestSuite{})
}

func (suite *LoadConfigTestSuite) TestLoadValidConfig() {
	values, err := suite.configResolver.Resolve()
	require.NoError(suite.T(), err)

	assert.True(suite.T(), values.Debug)
	assert.Equal(suite.T(), "DJIF3fje943fi4jefgo0", values.Secret)
	assert.Equal(suite.T(), 19, values.MaxClipAgeInDays)
	assert.Len(suite.T(), values.Streams, 0)
}

func (suite *LoadConfigTestSuite) TestLoadConfigAppliesStreamDefaults() {
	suite.overwriteTestConfig(
		`{
			"max_clip_age_in_days": 19,
			"streams": [
				{
					"title": "FrontDoor",
					"style_model": "/models/mosaic.t7",
					"fps": 15,
					"record": true,
					"persist_location": "/footage"
				}
			]
		}`,
	)

	values, err := suite.configResolver.Resolve()
	require.NoError(suite.T(), err)
	require.Len(suite.T(), values.Streams, 1)

	stream := values.Streams[0]
	assert.Equal(suite.T(), "2006/01/02 15:04:05.999999999", stream.DateTimeFormat)
	assert.Equal(suite.T(), 3, stream.SecondsPerClip)
}

func (suite *LoadConfigTestSuite) TestLoadInvalidJSONConfigReturnsParseError() {
	suite.overwriteTestConfig(`{"max_clip_age_in_days": 19,`)

	_, err := suite.configResolver.Resolve()
	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "parsing configuration error")
}

func (suite *LoadConfigTestSuite) TestLoadConfigWhichFailsValidationReturnsError() {
	suite.overwriteTestConfig(
		`{
			"max_clip_age_in_days": 19,
			"streams": [{"title": "", "style_model": "/models/mosaic.t7", "fps": 15}]
		}`,
	)

	_, err := suite.configResolver.Resolve()
	require.Error(suite.T(), err)
	assert.Equal(
		suite.T(),
		`Validation error in field "Title" of type "string" using validator "empty=false"`,
		err.Error(),
	)
}

func (suite *LoadConfigTestSuite) TestLoadMissingConfigFileReturnsError() {
	require.NoError(suite.T(), suite.fs.Remove(suite.path))

	_, err := suite.configResolver.Resolve()
	require.Error(suite.T(), err)

	// restore so TearDownTest's close has a file to operate on
	configFile, err := suite.fs.Create(suite.path)
	require.NoError(suite.T(), err)
	suite.configFile = configFile
}

func (suite *LoadConfigTestSuite) TestLoadConfigFromEnvOverriddenPath() {
	os.Setenv("PRISM_DAEMON_CONFIG", "/elsewhere/config.json")
	defer os.Unsetenv("PRISM_DAEMON_CONFIG")

	require.NoError(
		suite.T(),
		afero.WriteFile(
			suite.fs,
			"/elsewhere/config.json",
			[]byte(`{"max_clip_age_in_days": 21, "streams": []}`),
			0666,
		),
	)

	values, err := suite.configResolver.Resolve()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 21, values.MaxClipAgeInDays)
}
