package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/oldmonad/cloudinv/internal/app"
	config "github.com/oldmonad/cloudinv/pkg/config/cloud"
	cerrors "github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/inventory"
	"github.com/oldmonad/cloudinv/pkg/ports"
	"github.com/oldmonad/cloudinv/pkg/ports/cli"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAppRunner simulates the application runner
type MockAppRunner struct {
	mock.Mock
}

func (m *MockAppRunner) Run(ctx context.Context, opts app.RunOptions) (*app.Result, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.Result), args.Error(1)
}

// MockServer stands in for rest.StartServer
type MockServer struct {
	mock.Mock
}

func (m *MockServer) Start(appInstance app.AppRunner, port string) error {
	args := m.Called(port)
	return args.Error(0)
}

func init() {
	color.NoColor = true
}

// stubServer swaps the server starter for the duration of a test
func stubServer(t *testing.T, server *MockServer) {
	orig := cli.ServerStarter
	cli.ServerStarter = server.Start
	t.Cleanup(func() { cli.ServerStarter = orig })
}

func newRoot(runner app.AppRunner, args ...string) (*cobra.Command, *bytes.Buffer) {
	rootCmd := cli.NewCommand(runner, 8080)
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	return rootCmd, out
}

func sampleResult(published bool) *app.Result {
	inv := inventory.New()
	inv.Add("web", "10.0.1.5")
	inv.Add("db", "10.0.1.6")

	result := &app.Result{
		Provider:  config.AWS,
		Path:      "/srv/aws_inventory.ini",
		Groups:    2,
		Hosts:     2,
		Published: published,
		Inventory: inv,
	}
	if published {
		result.RemotePath = "aws_inventory.ini"
	}
	return result
}

func TestNewCommand(t *testing.T) {
	rootCmd := cli.NewCommand(new(MockAppRunner), 8080)

	assert.Equal(t, "cloudinv", rootCmd.Use)
	require.Len(t, rootCmd.Commands(), 3)

	// cobra sorts subcommands by name
	assert.Equal(t, "run", rootCmd.Commands()[0].Name())
	assert.Equal(t, "serve", rootCmd.Commands()[1].Name())
	assert.Equal(t, "show", rootCmd.Commands()[2].Name())
}

func TestRunCommandSuccess(t *testing.T) {
	mockApp := new(MockAppRunner)
	mockApp.On("Run", mock.Anything, app.RunOptions{Source: ports.CLI}).Return(sampleResult(true), nil)

	rootCmd, out := newRoot(mockApp, "run")
	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, out.String(), "web")
	assert.Contains(t, out.String(), "10.0.1.6")
	assert.Contains(t, out.String(), "Inventory written to /srv/aws_inventory.ini")
	assert.Contains(t, out.String(), "Published to aws_inventory.ini")
	mockApp.AssertExpectations(t)
}

func TestRunCommandSkipPublish(t *testing.T) {
	mockApp := new(MockAppRunner)
	mockApp.On("Run", mock.Anything, app.RunOptions{SkipPublish: true, Source: ports.CLI}).Return(sampleResult(false), nil)

	rootCmd, out := newRoot(mockApp, "run", "--skip-publish")
	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Not published")
	mockApp.AssertExpectations(t)
}

func TestRunCommandFailure(t *testing.T) {
	mockApp := new(MockAppRunner)
	expectedError := cerrors.NewDescribeRegions(errors.New("expired token"))
	mockApp.On("Run", mock.Anything, mock.Anything).Return(nil, expectedError)

	rootCmd, out := newRoot(mockApp, "run")
	err := rootCmd.Execute()

	var cmdErr *cerrors.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "run", cmdErr.Command)
	assert.ErrorIs(t, err, expectedError)
	assert.Empty(t, out.String())
}

func TestRunCommandRejectsArgs(t *testing.T) {
	mockApp := new(MockAppRunner)

	rootCmd, _ := newRoot(mockApp, "run", "extra")
	err := rootCmd.Execute()

	assert.Error(t, err)
	mockApp.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestServeCommand(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		expectedPort string
		startErr     error
		expectErr    bool
	}{
		{
			name:         "default port",
			args:         []string{"serve"},
			expectedPort: "8080",
		},
		{
			name:         "port flag",
			args:         []string{"serve", "--port", "9090"},
			expectedPort: "9090",
		},
		{
			name:         "server failure",
			args:         []string{"serve"},
			expectedPort: "8080",
			startErr:     errors.New("port 8080 already in use"),
			expectErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockApp := new(MockAppRunner)
			mockServer := new(MockServer)
			mockServer.On("Start", tt.expectedPort).Return(tt.startErr)
			stubServer(t, mockServer)

			rootCmd, _ := newRoot(mockApp, tt.args...)
			err := rootCmd.Execute()

			if tt.expectErr {
				assert.EqualError(t, err, tt.startErr.Error())
			} else {
				assert.NoError(t, err)
			}
			mockServer.AssertNumberOfCalls(t, "Start", 1)
			mockApp.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
		})
	}
}

func TestServeCommandPortOutOfRange(t *testing.T) {
	for _, port := range []string{"0", "70000"} {
		t.Run(port, func(t *testing.T) {
			mockServer := new(MockServer)
			stubServer(t, mockServer)

			rootCmd, _ := newRoot(new(MockAppRunner), "serve", "--port", port)
			err := rootCmd.Execute()

			var cmdErr *cerrors.CommandError
			require.ErrorAs(t, err, &cmdErr)
			assert.Equal(t, "serve", cmdErr.Command)
			assert.Contains(t, err.Error(), "out of range")
			mockServer.AssertNotCalled(t, "Start", mock.Anything)
		})
	}
}

func TestShowCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "azure_inventory.ini")
	content := "[web]\n10.1.0.4\n10.1.0.5\n\n[]\n10.1.0.9\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rootCmd, out := newRoot(new(MockAppRunner), "show", path)
	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, out.String(), "10.1.0.4, 10.1.0.5")
	assert.Contains(t, out.String(), "(untagged)")
	assert.Contains(t, out.String(), "10.1.0.9")
}

func TestShowCommandErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		rootCmd, _ := newRoot(new(MockAppRunner), "show", filepath.Join(t.TempDir(), "nope.ini"))
		err := rootCmd.Execute()

		var cmdErr *cerrors.CommandError
		require.ErrorAs(t, err, &cmdErr)
		assert.Equal(t, "show", cmdErr.Command)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.ini")
		require.NoError(t, os.WriteFile(path, []byte("10.0.0.1\n"), 0o644))

		rootCmd, _ := newRoot(new(MockAppRunner), "show", path)
		err := rootCmd.Execute()

		var readErr cerrors.ErrReadInventory
		assert.ErrorAs(t, err, &readErr)
	})

	t.Run("missing argument", func(t *testing.T) {
		rootCmd, _ := newRoot(new(MockAppRunner), "show")
		assert.Error(t, rootCmd.Execute())
	})
}
