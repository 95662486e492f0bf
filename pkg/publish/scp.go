package publish

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	scp "github.com/bramvdbogaerde/go-scp"
	pubConfig "github.com/oldmonad/cloudinv/pkg/config/publish"
	"github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// FileMode is the permission the inventory is created with on the remote
// host.
const FileMode = "0644"

type Publisher interface {
	// Publish pushes the local file and returns the remote path it was
	// written to.
	Publish(ctx context.Context, localPath string) (string, error)
}

// Session is one authenticated connection able to receive a file.
type Session interface {
	CopyFile(ctx context.Context, r io.Reader, remotePath, mode string) error
	Close() error
}

type Dialer func(ctx context.Context, cfg *pubConfig.Config) (Session, error)

type SCPPublisher struct {
	cfg  *pubConfig.Config
	Dial Dialer
}

func NewSCPPublisher(cfg *pubConfig.Config) *SCPPublisher {
	return &SCPPublisher{cfg: cfg, Dial: DialSSH}
}

func (p *SCPPublisher) Publish(ctx context.Context, localPath string) (string, error) {
	log := logger.WithField("component", "scp-publisher")

	f, err := os.Open(localPath)
	if err != nil {
		return "", errors.NewReadInventory(localPath, 0, err)
	}
	defer f.Close()

	remotePath := RemotePath(p.cfg.RemoteDir, filepath.Base(localPath))

	session, err := p.Dial(ctx, p.cfg)
	if err != nil {
		log.Error("SSH connection failed", zap.String("addr", p.cfg.Addr()), zap.Error(err))
		return "", err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Warn("Failed to close SSH session", zap.Error(cerr))
		}
	}()

	if err := session.CopyFile(ctx, f, remotePath, FileMode); err != nil {
		log.Error("Inventory copy failed", zap.String("remote_path", remotePath), zap.Error(err))
		return "", errors.NewCopyInventory(remotePath, err)
	}

	log.Info("Published inventory",
		zap.String("host", p.cfg.Host),
		zap.String("remote_path", remotePath))
	return remotePath, nil
}

// RemotePath joins dir and name. A leading ~ is dropped so the path is
// resolved by the remote side relative to the login directory.
func RemotePath(dir, name string) string {
	switch {
	case dir == "~" || dir == "~/":
		return name
	case strings.HasPrefix(dir, "~/"):
		return path.Join(strings.TrimPrefix(dir, "~/"), name)
	default:
		return path.Join(dir, name)
	}
}

type sshSession struct {
	client *ssh.Client
	scp    scp.Client
}

func (s *sshSession) CopyFile(ctx context.Context, r io.Reader, remotePath, mode string) error {
	return s.scp.CopyFile(ctx, r, remotePath, mode)
}

func (s *sshSession) Close() error {
	s.scp.Close()
	if err := s.client.Close(); err != nil && !stderrors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// DialSSH opens an SSH connection to the configured host. The host key must
// be listed in the known_hosts file.
func DialSSH(ctx context.Context, cfg *pubConfig.Config) (Session, error) {
	clientCfg, err := ClientConfig(cfg)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = pubConfig.DefaultTimeout
	}

	addr := cfg.Addr()
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, errors.NewSSHDial(addr, err)
	}

	if deadline, ok := dialCtx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, clientCfg)
	if err != nil {
		conn.Close()
		return nil, errors.NewSSHDial(addr, err)
	}
	_ = conn.SetDeadline(time.Time{})

	client := ssh.NewClient(c, chans, reqs)
	scpClient, err := scp.NewClientBySSH(client)
	if err != nil {
		client.Close()
		return nil, errors.NewSSHDial(addr, err)
	}

	return &sshSession{client: client, scp: scpClient}, nil
}

// ClientConfig builds the ssh client configuration: known_hosts pinning and
// key and/or password authentication.
func ClientConfig(cfg *pubConfig.Config) (*ssh.ClientConfig, error) {
	hostKeyCallback, err := knownhosts.New(cfg.KnownHostsPath)
	if err != nil {
		return nil, errors.NewKnownHosts(cfg.KnownHostsPath, err)
	}

	var auth []ssh.AuthMethod
	if cfg.PrivateKeyPath != "" {
		key, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, errors.NewPrivateKey(cfg.PrivateKeyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, errors.NewPrivateKey(cfg.PrivateKeyPath, err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}

	return &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         cfg.Timeout,
	}, nil
}
