package errors

import "fmt"

// ErrWriteInventory wraps failures writing the local inventory file.
type ErrWriteInventory struct {
	Path string
	Err  error
}

func (e ErrWriteInventory) Error() string {
	return fmt.Sprintf("failed to write inventory %s: %v", e.Path, e.Err)
}

func (e ErrWriteInventory) Unwrap() error {
	return e.Err
}

func NewWriteInventory(path string, err error) error {
	return ErrWriteInventory{Path: path, Err: err}
}

// ErrReadInventory wraps failures reading an inventory file back.
type ErrReadInventory struct {
	Path string
	Line int
	Err  error
}

func (e ErrReadInventory) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("failed to read inventory %s (line %d): %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("failed to read inventory %s: %v", e.Path, e.Err)
}

func (e ErrReadInventory) Unwrap() error {
	return e.Err
}

func NewReadInventory(path string, line int, err error) error {
	return ErrReadInventory{Path: path, Line: line, Err: err}
}

// ErrKnownHosts wraps failures loading the known_hosts file.
type ErrKnownHosts struct {
	Path string
	Err  error
}

func (e ErrKnownHosts) Error() string {
	return fmt.Sprintf("failed to load known hosts from %s: %v", e.Path, e.Err)
}

func (e ErrKnownHosts) Unwrap() error {
	return e.Err
}

func NewKnownHosts(path string, err error) error {
	return ErrKnownHosts{Path: path, Err: err}
}

// ErrPrivateKey wraps failures reading or parsing the SSH private key.
type ErrPrivateKey struct {
	Path string
	Err  error
}

func (e ErrPrivateKey) Error() string {
	return fmt.Sprintf("failed to load private key %s: %v", e.Path, e.Err)
}

func (e ErrPrivateKey) Unwrap() error {
	return e.Err
}

func NewPrivateKey(path string, err error) error {
	return ErrPrivateKey{Path: path, Err: err}
}

// ErrSSHDial wraps failures connecting or authenticating to the remote host.
type ErrSSHDial struct {
	Addr string
	Err  error
}

func (e ErrSSHDial) Error() string {
	return fmt.Sprintf("ssh connection to %s failed: %v", e.Addr, e.Err)
}

func (e ErrSSHDial) Unwrap() error {
	return e.Err
}

func NewSSHDial(addr string, err error) error {
	return ErrSSHDial{Addr: addr, Err: err}
}

// ErrCopyInventory wraps failures during the SCP transfer.
type ErrCopyInventory struct {
	RemotePath string
	Err        error
}

func (e ErrCopyInventory) Error() string {
	return fmt.Sprintf("failed to copy inventory to %s: %v", e.RemotePath, e.Err)
}

func (e ErrCopyInventory) Unwrap() error {
	return e.Err
}

func NewCopyInventory(remotePath string, err error) error {
	return ErrCopyInventory{RemotePath: remotePath, Err: err}
}
