// Package services holds the dashboard's background and side-channel
// operations: one-time companion-plugin deployment over SSH and the
// scheduled connection health sweep.
package services

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/pkg/sftp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"

	"agency-dashboard/models"
)

const defaultRemoteRoot = "/var/www/html"

// SSHClient wraps ssh.Client for mocking.
type SSHClient interface {
	NewSession() (*ssh.Session, error)
	SFTP() (SFTPClient, error)
	Close() error
}

// SFTPClient is the slice of sftp.Client the deployer uses.
type SFTPClient interface {
	MkdirAll(path string) error
	Create(path string) (io.WriteCloser, error)
	Close() error
}

// ClientFactory dials SSH connections; swapped out in tests.
type ClientFactory interface {
	Dial(addr string, config *ssh.ClientConfig) (SSHClient, error)
}

type defaultClientFactory struct{}

func (defaultClientFactory) Dial(addr string, config *ssh.ClientConfig) (SSHClient, error) {
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, err
	}
	return &defaultSSHClient{client: client}, nil
}

type defaultSSHClient struct {
	client *ssh.Client
}

func (c *defaultSSHClient) NewSession() (*ssh.Session, error) { return c.client.NewSession() }

func (c *defaultSSHClient) SFTP() (SFTPClient, error) {
	sc, err := sftp.NewClient(c.client)
	if err != nil {
		return nil, err
	}
	return &defaultSFTPClient{client: sc}, nil
}

func (c *defaultSSHClient) Close() error { return c.client.Close() }

type defaultSFTPClient struct {
	client *sftp.Client
}

func (c *defaultSFTPClient) MkdirAll(p string) error { return c.client.MkdirAll(p) }

func (c *defaultSFTPClient) Create(p string) (io.WriteCloser, error) { return c.client.Create(p) }

func (c *defaultSFTPClient) Close() error { return c.client.Close() }

// Deployer uploads the companion plugin into a site's mu-plugins directory
// over SSH. This is a one-time operation; ongoing management always goes
// through the REST surfaces.
type Deployer struct {
	factory    ClientFactory
	logger     zerolog.Logger
	remoteRoot string
}

// NewDeployer builds a deployer targeting the default WordPress root.
func NewDeployer(logger zerolog.Logger) *Deployer {
	return &Deployer{factory: defaultClientFactory{}, logger: logger, remoteRoot: defaultRemoteRoot}
}

// NewDeployerWithFactory builds a deployer with a custom SSH factory (for
// testing) and an optional remote WordPress root override.
func NewDeployerWithFactory(logger zerolog.Logger, factory ClientFactory, remoteRoot string) *Deployer {
	if remoteRoot == "" {
		remoteRoot = defaultRemoteRoot
	}
	return &Deployer{factory: factory, logger: logger, remoteRoot: remoteRoot}
}

// DeployCompanionPlugin connects with the credential record's SSH fields
// and writes pluginSource into wp-content/mu-plugins/. Must-use plugins
// load without activation, so the upload alone completes the install.
func (d *Deployer) DeployCompanionPlugin(creds models.WordPressCredentials, pluginSource []byte) error {
	if creds.SSHHost == "" || creds.SSHUser == "" || creds.SSHKey == "" {
		return fmt.Errorf("ssh credentials are not on file for this site")
	}

	signer, err := ssh.ParsePrivateKey([]byte(creds.SSHKey))
	if err != nil {
		return fmt.Errorf("parsing ssh private key: %w", err)
	}

	port := creds.SSHPort
	if port == 0 {
		port = 22
	}
	addr := fmt.Sprintf("%s:%d", creds.SSHHost, port)

	sshConfig := &ssh.ClientConfig{
		User:            creds.SSHUser,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	client, err := d.factory.Dial(addr, sshConfig)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}
	defer client.Close()

	sftpClient, err := client.SFTP()
	if err != nil {
		return fmt.Errorf("opening sftp channel: %w", err)
	}
	defer sftpClient.Close()

	muPluginsDir := path.Join(d.remoteRoot, "wp-content", "mu-plugins")
	if err := sftpClient.MkdirAll(muPluginsDir); err != nil {
		return fmt.Errorf("creating %s: %w", muPluginsDir, err)
	}

	remotePath := path.Join(muPluginsDir, "dashboard-companion.php")
	remoteFile, err := sftpClient.Create(remotePath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", remotePath, err)
	}
	defer remoteFile.Close()

	if _, err := io.Copy(remoteFile, bytes.NewReader(pluginSource)); err != nil {
		return fmt.Errorf("writing %s: %w", remotePath, err)
	}

	d.logger.Info().Str("host", creds.SSHHost).Str("path", remotePath).
		Msg("companion plugin deployed")
	return nil
}
